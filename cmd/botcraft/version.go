package main

import (
	"fmt"

	"github.com/aretw0/botcraft"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of botcraft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "botcraft version %s\n", botcraft.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
