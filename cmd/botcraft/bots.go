package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/aretw0/botcraft/internal/cli"
	"github.com/aretw0/botcraft/pkg/backend"
	"github.com/spf13/cobra"
)

var botsCmd = &cobra.Command{
	Use:   "bots",
	Short: "Manage chatbots on the backend",
	Long:  `Creates, lists, deletes and chats with knowledge-based bots stored on BOTCRAFT_BACKEND_URL.`,
}

func newBackend(cmd *cobra.Command) (*backend.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return backend.New(cfg.BackendURL,
		backend.WithToken(cfg.BackendToken),
		backend.WithLogger(cli.NewLogger(cfg.LogLevel, false)),
	), nil
}

var botsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your bots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		bots, err := c.ListBots(cmd.Context())
		if err != nil {
			return err
		}
		return printBots(cmd.OutOrStdout(), bots)
	},
}

var botsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		s, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bots: %d\nconversations: %d\nmessages: %d\n",
			s.TotalBots, s.TotalConversations, s.TotalMessages)
		return nil
	},
}

var botsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a bot from a PDF, a CSV and/or a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		pdf, _ := cmd.Flags().GetString("pdf")
		csv, _ := cmd.Flags().GetString("csv")
		link, _ := cmd.Flags().GetString("url")

		req := backend.IngestRequest{Name: args[0], URL: link}
		if req.File, err = openUpload(pdf); err != nil {
			return err
		}
		if req.CSV, err = openUpload(csv); err != nil {
			return err
		}
		for _, u := range []*backend.Upload{req.File, req.CSV} {
			if u != nil {
				defer u.Content.(io.Closer).Close()
			}
		}

		resp, err := c.Ingest(cmd.Context(), req)
		if err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Bot '%s' created (%s, %d chunks).", resp.BotID, resp.Status, resp.Chunks)
		return nil
	},
}

var botsDeleteCmd = &cobra.Command{
	Use:   "delete <bot-id>",
	Short: "Delete a bot and its knowledge",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteBot(cmd.Context(), args[0]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Bot '%s' deleted.", args[0])
		return nil
	},
}

var botsChatCmd = &cobra.Command{
	Use:   "chat <bot-id> <question>",
	Short: "Ask a bot a question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		answer, err := c.Chat(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

var botsTelegramCmd = &cobra.Command{
	Use:   "telegram <bot-id> <telegram-token>",
	Short: "Connect a bot to a Telegram channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBackend(cmd)
		if err != nil {
			return err
		}
		if err := c.ConnectTelegram(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Bot '%s' connected to Telegram.", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(botsCmd)
	botsCmd.AddCommand(botsListCmd, botsStatsCmd, botsCreateCmd, botsDeleteCmd, botsChatCmd, botsTelegramCmd)

	botsCreateCmd.Flags().String("pdf", "", "PDF document to ingest")
	botsCreateCmd.Flags().String("csv", "", "CSV file to ingest")
	botsCreateCmd.Flags().String("url", "", "Web page to ingest")
}

func openUpload(path string) (*backend.Upload, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &backend.Upload{Filename: filepath.Base(path), Content: f}, nil
}

func printBots(w io.Writer, bots []backend.Bot) error {
	if len(bots) == 0 {
		_, err := fmt.Fprintln(w, "No bots yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCREATED")
	for _, b := range bots {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Status, b.CreatedAt)
	}
	return tw.Flush()
}
