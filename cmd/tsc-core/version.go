package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surgetype/internal/version"
)

var (
	versionNameColor  = color.New(color.FgWhite, color.Bold)
	versionValueColor = color.New(color.FgCyan, color.Bold)
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", versionNameColor.Sprint("tsc-core"), versionValueColor.Sprint(version.Version))
		if version.GitCommit != "" {
			fmt.Fprintf(out, "%s %s\n", versionNameColor.Sprint("commit"), versionValueColor.Sprint(version.GitCommit))
		}
		if version.BuildDate != "" {
			fmt.Fprintf(out, "%s %s\n", versionNameColor.Sprint("built"), versionValueColor.Sprint(version.BuildDate))
		}
	},
}
