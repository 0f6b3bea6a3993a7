package main

import (
	"github.com/aretw0/botcraft/internal/config"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables botcraft reads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Usage()
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
