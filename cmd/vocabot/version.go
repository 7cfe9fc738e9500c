package main

import (
	"github.com/spf13/cobra"

	"github.com/m3rciful/vocabot/core/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("vocabot %s (commit %s", buildinfo.Version, buildinfo.Commit)
		if buildinfo.Date != "" {
			cmd.Printf(", built %s", buildinfo.Date)
		}
		cmd.Println(")")
	},
}
