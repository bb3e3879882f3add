package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/docschema/internal/catalog"
	"github.com/conduit-lang/docschema/internal/cli/ui"
	"github.com/conduit-lang/docschema/internal/model"
)

func newCheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate model declarations",
		Long: `Load the models file, verify bases exist, look for embedding cycles, and
render every model in both strict and lax mode, inlined models first.

Fields whose target model is not declared are reported as warnings: an
embedded one renders as an empty object and a reference one as its key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd, nil); err != nil {
				return err
			}

			models, err := model.LoadPath(e.cfg.Models)
			if err != nil {
				return fmt.Errorf("failed to load models from %s: %w", e.cfg.Models, err)
			}

			registry := model.NewRegistry()
			if err := registry.RegisterAll(models...); err != nil {
				return err
			}

			if cycles := model.NewEmbedGraph(registry.All()).DetectCycles(); len(cycles) > 0 {
				lines := make([]string, len(cycles))
				for i, c := range cycles {
					lines[i] = formatCycle(c)
				}
				fmt.Fprint(cmd.ErrOrStderr(), ui.CycleError(lines, e.noColor))
				return fmt.Errorf("%d embedding cycle(s)", len(cycles))
			}
			if err := registry.ValidateAll(); err != nil {
				return err
			}

			unresolved := registry.UnresolvedTargets()
			for _, u := range unresolved {
				fmt.Fprint(cmd.ErrOrStderr(), ui.Warning(u.String(), e.noColor))
			}

			order, err := registry.DependencyOrder()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cat := catalog.New(registry, catalog.WithLogger(e.logger))
			for _, name := range order {
				if m, _ := registry.Get(name); m.Abstract {
					continue
				}
				for _, strict := range []bool{true, false} {
					if _, err := cat.Render(ctx, name, strict); err != nil {
						return fmt.Errorf("model %s: %w", name, err)
					}
				}
			}

			stats := registry.Stats()
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf(
				"%d models, %d fields OK (%d abstract, %d inherited, %d dynamic, %d custom, %d unresolved)",
				stats.TotalModels, stats.TotalFields, stats.AbstractModels, stats.Inherited,
				stats.DynamicModels, stats.Overrides, len(unresolved),
			), e.noColor)
			return nil
		},
	}
}

// formatCycle closes the loop back to its first member without touching c
func formatCycle(c []string) string {
	loop := append(append(make([]string, 0, len(c)+1), c...), c[0])
	return strings.Join(loop, " -> ")
}
