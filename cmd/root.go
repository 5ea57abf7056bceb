package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wikimark/wikiconf/siteconf"
)

// logLevelEnv overrides the log level regardless of --verbose.
const logLevelEnv = "WIKICONF_LOG"

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wikiconf [domains...]",
	Short: "wikiconf - generate wikitext parser configuration from live wikis",
	Long: `Fetch the site configuration of a MediaWiki based wiki and output Go code
declaring a parser configuration specific to that wiki. Generated code is
written to stdout, log messages to stderr.

The maximum log level can be set in the env variable ` + logLevelEnv + ` to one
of debug, info, warn or error.`,
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'wikiconf' is entered
			_ = cmd.Help()
			return
		}
		// Format: wikiconf [domain1 domain2 ...] => behaves like the fetch subcommand
		fetchCmd.Run(fetchCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to the configuration file (default "+siteconf.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0,
		"Override the siteinfo request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(trailCmd)
}

func setupLogger() error {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	if name := os.Getenv(logLevelEnv); name != "" {
		parsed, err := zapcore.ParseLevel(name)
		if err != nil {
			return fmt.Errorf("invalid %s level %q: %w", logLevelEnv, name, err)
		}
		level = parsed
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build()
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// loadConfig resolves the configuration for the current invocation: the
// --config file if given, the default file if present, built-in defaults
// otherwise, with flag overrides applied on top.
func loadConfig() (siteconf.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(siteconf.DefaultConfigFile); err == nil {
			path = siteconf.DefaultConfigFile
		}
	}

	cfg := siteconf.DefaultConfig()
	if path != "" {
		var err error
		cfg, err = siteconf.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
	}

	if timeout > 0 {
		cfg.Timeout = siteconf.Duration(timeout)
	}
	return cfg, nil
}
