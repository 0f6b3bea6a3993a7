package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/botcraft/internal/cli"
	"github.com/aretw0/botcraft/pkg/adapters/gemini"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [question]",
	Short: "Chat with a bot configuration locally through Gemini",
	Long: `Previews a bot before it is created on the backend. Knowledge comes from text
files (--source) and web pages (--url, extracted by the model with search grounding).
Without a question an interactive session starts; type "exit" to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := cli.NewLogger(cfg.LogLevel, false)
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		p, err := gemini.New(ctx, cfg.GeminiAPIKey, gemini.WithModel(cfg.GeminiModel), gemini.WithLogger(logger))
		if err != nil {
			return err
		}

		bot := gemini.BotConfig{}
		bot.Name, _ = cmd.Flags().GetString("name")
		bot.Tone, _ = cmd.Flags().GetString("tone")
		bot.UseCase, _ = cmd.Flags().GetString("use-case")

		sources, _ := cmd.Flags().GetStringSlice("source")
		for _, path := range sources {
			ds, err := fileSource(path)
			if err != nil {
				return err
			}
			bot.DataSources = append(bot.DataSources, ds)
		}
		urls, _ := cmd.Flags().GetStringSlice("url")
		for _, u := range urls {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Reading %s ...", u)
			content, err := p.ExtractContentFromURL(ctx, u)
			if err != nil {
				return err
			}
			bot.DataSources = append(bot.DataSources, gemini.DataSource{
				Name: u, Type: "url", Content: content, Status: gemini.SourceReady,
			})
		}

		if len(args) == 1 {
			fmt.Fprintln(cmd.OutOrStdout(), p.Chat(ctx, bot, nil, args[0]))
			return nil
		}
		return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), p, bot)
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("name", "Assistant", "Bot name")
	previewCmd.Flags().String("tone", "friendly", "Tone of voice")
	previewCmd.Flags().String("use-case", "customer support", "What the bot is for")
	previewCmd.Flags().StringSlice("source", nil, "Text file to use as knowledge (repeatable)")
	previewCmd.Flags().StringSlice("url", nil, "Web page to use as knowledge (repeatable)")
}

func fileSource(path string) (gemini.DataSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gemini.DataSource{}, err
	}
	return gemini.DataSource{
		Name:    filepath.Base(path),
		Type:    "text",
		Content: string(data),
		Status:  gemini.SourceReady,
	}, nil
}

// chatter is the part of the provider the chat loop needs.
type chatter interface {
	Chat(ctx context.Context, cfg gemini.BotConfig, history []gemini.Message, message string) string
}

func chatLoop(ctx context.Context, in io.Reader, out io.Writer, p chatter, bot gemini.BotConfig) error {
	var history []gemini.Message
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		answer := p.Chat(ctx, bot, history, line)
		fmt.Fprintln(out, answer)
		now := time.Now()
		history = append(history,
			gemini.Message{Role: gemini.RoleUser, Content: line, Timestamp: now},
			gemini.Message{Role: gemini.RoleModel, Content: answer, Timestamp: now},
		)
	}
}
