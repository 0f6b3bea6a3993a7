package main

import (
	"fmt"

	"github.com/aretw0/botcraft/internal/cli"
	"github.com/aretw0/botcraft/pkg/adapters/mcp"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [workflow-file]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the workflow editor as MCP tools so AI agents can build and run workflows.
When a workflow file is given it seeds the default session.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs must not corrupt JSON-RPC on Stdout; the logger writes to Stderr.
		logger := cli.NewLogger(cfg.LogLevel, false)
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		store, err := cli.OpenStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		sessOpts := []session.Option{session.WithLogger(logger)}
		if store.Locker != nil {
			sessOpts = append(sessOpts, session.WithLocker(store.Locker))
		}
		sessions := session.NewManager(store.GraphStore, sessOpts...)

		opts := []mcp.Option{
			mcp.WithLogger(logger),
			mcp.WithRunner(cli.NewRunner(cfg, logger, domain.RunHooks{})),
		}
		if len(args) == 1 {
			f, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			g, err := f.Build()
			if err != nil {
				return err
			}
			sess, err := sessions.CreateFrom(ctx, g.Document())
			if err != nil {
				return err
			}
			opts = append(opts, mcp.WithSession(sess.ID))
		}
		srv := mcp.NewServer(sessions, opts...)

		switch transport {
		case "stdio":
			logger.Info("Starting botcraft MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			addr := fmt.Sprintf(":%d", port)
			if err := srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port)); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
