package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"surgetype/internal/types"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	headerStyle = lipgloss.NewStyle().Bold(true)
	flagStyle   = lipgloss.NewStyle().Faint(true)
)

var explainCmd = &cobra.Command{
	Use:   "explain-type <name>",
	Short: "Print the structural breakdown of a fixture type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		f := buildFixture(opts)
		f.Session.CheckModule(f.Module)

		name := f.Session.Strings.Intern(args[0])
		sym, ok := f.File.Locals.Lookup(name)
		if !ok {
			return fmt.Errorf("no symbol named %q in the fixture", args[0])
		}

		res := f.Session.ResolverFor(f.Module)
		resolved := res.ResolveType(res.GetTypeOfSymbol(sym.ID))
		fmt.Fprintln(cmd.OutOrStdout(), renderType(f, args[0], resolved))
		return nil
	},
}

// renderType draws an object shape as a bordered property table; other
// structural forms fall back to the interner's label.
func renderType(f *fixture, name string, id types.TypeID) string {
	in := f.Session.Interner
	header := headerStyle.Render(fmt.Sprintf("%s = %s", name, in.MustLookup(id).Kind))

	shape, ok := in.ObjectShapeOf(id)
	if !ok {
		return boxStyle.Render(header + "\n" + in.Label(id))
	}

	var rows []string
	for _, p := range shape.Properties {
		propName, _ := f.Session.Strings.Lookup(p.Name)
		var flags []string
		if p.Optional {
			flags = append(flags, "optional")
		}
		if p.Readonly {
			flags = append(flags, "readonly")
		}
		if p.IsMethod {
			flags = append(flags, "method")
		}
		row := fmt.Sprintf("%-12s %s", propName, in.Label(p.Type))
		if len(flags) > 0 {
			row += " " + flagStyle.Render("("+strings.Join(flags, ", ")+")")
		}
		rows = append(rows, row)
	}
	if shape.StringIndex != types.NoTypeID {
		rows = append(rows, fmt.Sprintf("%-12s %s", "[string]", in.Label(shape.StringIndex)))
	}
	if shape.NumberIndex != types.NoTypeID {
		rows = append(rows, fmt.Sprintf("%-12s %s", "[number]", in.Label(shape.NumberIndex)))
	}

	return boxStyle.Render(header + "\n" + strings.Join(rows, "\n"))
}
