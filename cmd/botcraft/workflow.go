package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/botcraft"
	"github.com/aretw0/botcraft/internal/cli"
	"github.com/aretw0/botcraft/internal/presentation/graph"
	"github.com/aretw0/botcraft/internal/presentation/tui"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/schema"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <workflow-file>",
	Short: "Submit a workflow file to the execution backend",
	Long: `Loads a workflow (.yaml, .yml or .json), checks that it is runnable and posts it
to BOTCRAFT_BACKEND_URL + BOTCRAFT_EXECUTE_PATH. The result is rendered as Markdown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RunTimeout, _ = cmd.Flags().GetDuration("timeout")
		}
		input, _ := cmd.Flags().GetString("input")
		raw, _ := cmd.Flags().GetBool("raw")

		logger := cli.NewLogger(cfg.LogLevel, false)
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		render := tui.RendererFor(os.Stdout)
		if raw {
			render = tui.Plain
		}
		return runWorkflow(ctx, cmd.OutOrStdout(), render, cli.NewRunner(cfg, logger, domain.RunHooks{}), args[0], input)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <workflow-file>",
	Short: "Check a workflow file and print its execution plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <workflow-file>",
	Short: "Export the workflow as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph LR). Nodes with invalid configuration are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGraph(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd, validateCmd, graphCmd)
	runCmd.Flags().StringP("input", "i", "", "Initial input; defaults to the file's initial_input or the start node prompt")
	runCmd.Flags().Duration("timeout", 0, "Request timeout; overrides BOTCRAFT_RUN_TIMEOUT")
	runCmd.Flags().Bool("raw", false, "Print the result without Markdown rendering")
}

func loadGraph(path string) (*workflow.File, *botcraft.Studio, error) {
	f, err := workflow.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := f.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, botcraft.New(botcraft.WithEditor(editor.New(g))), nil
}

func runWorkflow(ctx context.Context, w io.Writer, render tui.Renderer, runner botcraft.Runner, path, input string) error {
	f, studio, err := loadGraph(path)
	if err != nil {
		return err
	}
	if input == "" {
		input = f.InitialInput
	}
	res := botcraft.Submit(ctx, runner, studio.Editor().Graph(), input)
	if res.Failed() {
		return errors.New(res.Error)
	}
	out, err := render(res.Display())
	if err != nil {
		out = res.Display()
	}
	fmt.Fprintln(w, out)
	return nil
}

func runValidate(w io.Writer, path string) error {
	_, studio, err := loadGraph(path)
	if err != nil {
		return err
	}
	if err := workflow.Check(studio.Editor().Graph()); err != nil {
		return fmt.Errorf("validation failed:\n%w", err)
	}
	plan, err := studio.Plan()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Workflow is valid. Entry: %s\n", plan.Entry)
	for i, step := range plan.Steps {
		fmt.Fprintf(w, "%2d. %-10s %s (%s)\n", i+1, step.Kind, step.Label, step.NodeID)
	}
	for _, id := range plan.Unreachable {
		fmt.Fprintf(w, "warning: %s is not reachable from the entry\n", id)
	}
	return nil
}

func runGraph(w io.Writer, path string) error {
	_, studio, err := loadGraph(path)
	if err != nil {
		return err
	}
	g := studio.Editor().Graph()
	overlay := &graph.GraphOverlay{}
	for _, n := range g.Nodes() {
		if schema.ValidateConfig(n.Config) != nil {
			overlay.Invalid = append(overlay.Invalid, n.ID)
		}
	}
	fmt.Fprint(w, graph.GenerateMermaid(g.Document(), overlay))
	return nil
}
