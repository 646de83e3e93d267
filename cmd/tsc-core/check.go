package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surgetype/internal/checkopts"
	"surgetype/internal/diag"
	"surgetype/internal/project"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	typeColor    = color.New(color.FgCyan)
	nameColor    = color.New(color.FgWhite, color.Bold)
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve the fixture program and print per-symbol types",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		applyColorMode(cmd)

		f := buildFixture(opts)
		f.Session.CheckModule(f.Module)

		res := f.Session.ResolverFor(f.Module)
		for _, name := range f.File.Locals.Names() {
			sym, ok := f.File.Locals.Lookup(name)
			if !ok {
				continue
			}
			resolved := res.ResolveType(res.GetTypeOfSymbol(sym.ID))
			label := f.Session.Interner.Label(resolved)
			text, _ := f.Session.Strings.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", nameColor.Sprint(text), typeColor.Sprint(label))
		}

		return printDiagnostics(cmd, f)
	},
}

func printDiagnostics(cmd *cobra.Command, f *fixture) error {
	bag := f.Session.Bag
	bag.Sort()
	bag.Dedup()
	for _, d := range bag.Items() {
		sev := warningColor.Sprint("warning")
		if d.Severity == diag.SevError {
			sev = errorColor.Sprint("error")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s\n", sev, d.Code.ID(), d.Message)
		if caret, ok := diag.RenderCaretLine(f.Session.FileSet, d.Primary); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), caret)
		}
	}
	if bag.HasErrors() {
		return fmt.Errorf("check failed with %d diagnostics", bag.Len())
	}
	return nil
}

// loadOptions finds and decodes the project manifest, or falls back to the
// strict defaults.
func loadOptions(cmd *cobra.Command) (checkopts.Options, error) {
	manifest, err := cmd.Root().PersistentFlags().GetString("manifest")
	if err != nil {
		return checkopts.Options{}, err
	}
	if manifest == "" {
		found, ok, err := project.FindManifest(".")
		if err != nil || !ok {
			return checkopts.Default(), err
		}
		manifest = found
	}
	return checkopts.Load(manifest)
}

func applyColorMode(cmd *cobra.Command) {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	// auto: fatih/color already checks the terminal.
}
