package main

import (
	"fmt"
	"os"

	"github.com/aretw0/botcraft/internal/config"
	"github.com/aretw0/botcraft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "botcraft",
	Short: "Botcraft designs agent workflows and runs them on an execution backend",
	Long: `Botcraft edits node-and-edge agent workflows, serializes them into execution
requests and submits them to a workflow backend. It can serve the editor over
HTTP or MCP, and manage chatbots on the backend.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout())
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", ".env", "Dotenv file to load before reading "+config.Prefix+"_* variables")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides "+config.Prefix+"_LOG_LEVEL")
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}
