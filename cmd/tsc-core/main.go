package main

import (
	"os"

	"github.com/spf13/cobra"

	"surgetype/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tsc-core",
	Short: "Type resolution and narrowing engine harness",
	Long: `tsc-core exercises the checker core end-to-end against a built-in
fixture program: it constructs an in-memory AST arena and binder, runs the
symbol resolver, and prints resolved types and diagnostics. The real parser
and binder live outside this module; this harness stands in for them.`,
}

func main() {
	rootCmd.Version = versionString()

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("manifest", "", "path to a tscheck.toml manifest (default: walk up from cwd)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	v := version.Version
	if version.GitCommit != "" {
		v += "+" + version.GitCommit
	}
	return v
}
