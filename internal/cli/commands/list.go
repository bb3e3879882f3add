package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/docschema/internal/cli/ui"
)

func newListCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List declared models",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd, nil); err != nil {
				return err
			}

			registry, err := e.registry()
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(), e.noColor, "MODEL", "BASE", "FIELDS", "FLAGS", "DOC")
			for _, name := range registry.List() {
				m, _ := registry.Get(name)

				var flags []string
				if m.Abstract {
					flags = append(flags, "abstract")
				}
				if m.Dynamic {
					flags = append(flags, "dynamic")
				}
				if m.Override != nil {
					flags = append(flags, "custom")
				}

				base := m.Base
				if base == "" {
					base = "-"
				}
				doc, _, _ := strings.Cut(strings.TrimSpace(m.Documentation), "\n")
				table.AddRow(name, base, strconv.Itoa(len(m.Fields)), strings.Join(flags, ","), doc)
			}
			table.Render()
			return nil
		},
	}
}
