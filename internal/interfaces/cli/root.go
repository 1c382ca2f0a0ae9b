// Package cli defines the affinity command tree: the root command with its
// global flags and the run subcommand that executes the benchmark grid.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bindwell/affinity/internal/config"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// NewRootCommand creates the root command with global flags and the run
// subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "affinity",
		Short: "Drug-target binding affinity benchmark pipeline",
		Long: "affinity trains a feed-forward regressor on drug-target interaction\n" +
			"datasets and evaluates it under two protein-aware split policies,\n" +
			"reporting MSE, R², concordance index, Pearson correlation, and AUPR.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./affinity.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "", "log format (console, json)")

	cmd.AddCommand(NewRunCommand(opts))
	return cmd
}

// loadConfig resolves the configuration: the --config flag wins, then
// ./affinity.yaml if present, then environment variables and defaults.
// Log flags override the loaded settings.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.ConfigPath != "":
		cfg, err = config.Load(opts.ConfigPath)
	default:
		if _, statErr := os.Stat("affinity.yaml"); statErr == nil {
			cfg, err = config.Load("affinity.yaml")
		} else {
			cfg, err = config.LoadFromEnv()
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = strings.ToLower(opts.LogFormat)
	}
	return cfg, nil
}

// newLogger builds the CLI logger on stderr so stdout stays clean for
// results.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	logCfg := cfg.Log
	logCfg.OutputPaths = []string{"stderr"}
	return logging.NewLogger(logCfg)
}

// Execute runs the command tree.
func Execute() error {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}
