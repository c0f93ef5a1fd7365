// Package cli implements the serializer-metadata command line.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is reported by --version and in OpenAPI output.
var Version = "dev"

// Option customises the root command.
type Option func(*app)

// WithPrompter replaces the interactive class selector.
func WithPrompter(p Prompter) Option {
	return func(a *app) {
		if p != nil {
			a.prompter = p
		}
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(fn func() bool) Option {
	return func(a *app) {
		if fn != nil {
			a.interactive = fn
		}
	}
}

// WithLogger injects a logger instead of building one from --verbose.
func WithLogger(logger *zap.Logger) Option {
	return func(a *app) {
		a.logger = logger
	}
}

type app struct {
	viper       *viper.Viper
	configFile  string
	prompter    Prompter
	interactive func() bool
	logger      *zap.Logger
	cfg         *Config
}

// NewRootCommand builds the command tree.
func NewRootCommand(options ...Option) *cobra.Command {
	a := &app{
		viper:       newViper(),
		prompter:    surveyPrompter{pageSize: 15},
		interactive: stdinIsTerminal,
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "serializer-metadata",
		Short:         "Inspect serializer metadata decorated with document mapping types",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./"+ConfigName+".yaml)")
	flags.String("metadata", "", "directory of serializer metadata YAML files")
	flags.BoolP("verbose", "v", false, "enable development logging")
	flags.String("naming", "identical", "property naming strategy (identical, snake_case)")
	flags.String("redis", "", "redis address used to cache compiled metadata")

	root.AddCommand(newInspectCommand(a), newClassesCommand(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.viper, a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.logger == nil {
		a.logger, err = newLogger(cfg.Verbose)
		if err != nil {
			return err
		}
	}
	a.logger.Debug("configuration loaded",
		zap.String("config", a.viper.ConfigFileUsed()),
		zap.String("metadata", cfg.Metadata),
		zap.String("mapping", cfg.Mapping),
		zap.String("format", cfg.Format),
	)
	return nil
}

func (a *app) closePipeline(p *pipeline) {
	if err := p.Close(); err != nil {
		a.logger.Warn("closing metadata cache failed", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// Execute runs the root command against os.Args.
func Execute(stderr io.Writer) int {
	if err := NewRootCommand().Execute(); err != nil {
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		return 1
	}
	return 0
}
