package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/docschema/internal/catalog"
	"github.com/conduit-lang/docschema/internal/cli/ui"
)

func newGenerateCommand(e *env) *cobra.Command {
	var (
		strict bool
		output string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:     "generate [model...]",
		Aliases: []string{"g"},
		Short:   "Render JSON Schema documents",
		Long: `Render one JSON Schema document per model.

With no arguments every non-abstract model is rendered. Documents are written
to the output directory as <Model>.schema.json unless --stdout is given.

Examples:
  docschema generate
  docschema generate User Order -o build/schemas
  docschema generate User --stdout --strict=false`,
		ValidArgsFunction: completeModels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setup(cmd, map[string]string{
				"strict":     "strict",
				"output_dir": "output",
			}); err != nil {
				return err
			}

			registry, err := e.registry()
			if err != nil {
				return err
			}
			if err := e.checkNames(cmd.ErrOrStderr(), registry, args); err != nil {
				return err
			}

			cat := catalog.New(registry, catalog.WithLogger(e.logger))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			if stdout {
				rendered, err := cat.RenderAll(ctx, e.cfg.Strict, args...)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, r := range rendered {
					if _, err := out.Write(r.Body); err != nil {
						return err
					}
				}
				return nil
			}

			paths, err := cat.WriteDir(ctx, e.cfg.OutputDir, e.cfg.Strict, args...)
			if err != nil {
				return err
			}
			for _, p := range paths {
				e.logger.Info("wrote schema", zap.String("path", p))
			}

			mode := "strict"
			if !e.cfg.Strict {
				mode = "lax"
			}
			ui.WriteSuccess(cmd.OutOrStdout(),
				fmt.Sprintf("Wrote %d %s schema(s) to %s", len(paths), mode, e.cfg.OutputDir), e.noColor)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", true, "emit required lists and forbid unknown keys")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (overrides config)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write documents to stdout instead of files")

	return cmd
}
