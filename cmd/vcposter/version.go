package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notblackorwhite/vc-auto-poster/internal/platform/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		return err
	},
}
