package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/conduit-lang/docschema/internal/cli/config"
	"github.com/conduit-lang/docschema/internal/cli/ui"
	"github.com/conduit-lang/docschema/internal/logging"
	"github.com/conduit-lang/docschema/internal/model"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// env carries global flags and the state derived from them into subcommands
type env struct {
	configPath string
	modelsPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger
}

// setup loads configuration with the global flags and the given command flags
// bound on top of it. bindings maps config keys to flag names.
func (e *env) setup(cmd *cobra.Command, bindings map[string]string) error {
	v, err := config.New(e.configPath)
	if err != nil {
		return err
	}

	global := cmd.Root().PersistentFlags()
	if err := bind(v, global, "models", "models"); err != nil {
		return err
	}
	if err := bind(v, global, "log.level", "log-level"); err != nil {
		return err
	}
	for key, name := range bindings {
		if err := bind(v, cmd.Flags(), key, name); err != nil {
			return err
		}
	}

	cfg, err := config.FromViper(v)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), e.noColor))
		return err
	}
	// A flag path is relative to the working directory, not the config file
	if global.Lookup("models").Changed {
		cfg.Models = e.modelsPath
	}
	e.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	e.logger = logging.NewConsole(cmd.ErrOrStderr(), level)
	return nil
}

// bind lets an explicitly set flag override the file and environment value
func bind(v *viper.Viper, flags *pflag.FlagSet, key, name string) error {
	f := flags.Lookup(name)
	if f == nil {
		return fmt.Errorf("unknown flag %s", name)
	}
	return v.BindPFlag(key, f)
}

// registry loads and validates the configured models file
func (e *env) registry() (*model.Registry, error) {
	registry, err := model.LoadRegistry(e.cfg.Models)
	if err != nil {
		return nil, fmt.Errorf("failed to load models from %s: %w", e.cfg.Models, err)
	}
	e.logger.Debug("models loaded",
		zap.String("path", e.cfg.Models),
		zap.Int("count", registry.Count()),
		zap.String("version", registry.Fingerprint()),
	)
	for _, u := range registry.UnresolvedTargets() {
		e.logger.Warn("unresolved target",
			zap.String("model", u.Model),
			zap.String("field", u.Field),
			zap.Stringer("kind", u.Kind),
			zap.String("target", u.Target),
		)
	}
	return registry, nil
}

// checkNames reports the first name that is not a registered model
func (e *env) checkNames(w io.Writer, registry *model.Registry, names []string) error {
	for _, name := range names {
		if _, ok := registry.Get(name); !ok {
			fmt.Fprint(w, ui.ModelNotFoundError(name, registry.List(), e.noColor))
			return fmt.Errorf("unknown model %s", name)
		}
	}
	return nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	e := &env{}

	rootCmd := &cobra.Command{
		Use:   "docschema",
		Short: "Generate JSON Schema documents from document model declarations",
		Long: color.CyanString(`docschema - JSON Schema for document models

docschema reads document model declarations from a YAML file and renders
one JSON Schema (draft 2020-12) per model, either to disk or over HTTP.

Features:
  • Strict and lax schemas from the same declarations
  • Inheritance, embedded documents and GeoJSON shapes
  • Cached HTTP serving with ETags`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if e.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&e.configPath, "config", "", "config file (default ./docschema.yaml)")
	flags.StringVarP(&e.modelsPath, "models", "m", "", "models file (overrides config)")
	flags.StringVar(&e.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&e.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newGenerateCommand(e))
	rootCmd.AddCommand(newListCommand(e))
	rootCmd.AddCommand(newCheckCommand(e))
	rootCmd.AddCommand(newServeCommand(e))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the docschema version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)

			titleColor.Fprint(out, "docschema version: ")
			fmt.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			fmt.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
