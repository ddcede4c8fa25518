// Package cli implements the etf-ddt command surface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guadaltel/etf-result-checker/internal/config"
	"github.com/guadaltel/etf-result-checker/internal/etf"
	"github.com/guadaltel/etf-result-checker/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "etf-ddt",
	Short: "Data-driven conformance checks against a remote validation service",
	Long: `etf-ddt submits declarative test runs to a remote ETF validation
service, waits for asynchronously delivered assertion results, and
compares them against per-suite expectation files. Suites without an
expectation file have one generated from their first run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		if cfgFile != "" {
			loader.SetConfigFile(cfgFile)
		}
		loaded, err := loader.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logging.Init(logging.Config{
			Level:        cfg.Logging.Level,
			Format:       cfg.Logging.Format,
			EnableCaller: cfg.Logging.EnableCaller,
		})

		if used := loader.ConfigFileUsed(); used != "" {
			logging.Debug().Str("config_file", used).Msg("loaded config file")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/etf-ddt/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
}

// newClient builds the service client from the loaded configuration.
func newClient() (*etf.Client, error) {
	opts := []etf.Option{
		etf.WithTimeout(cfg.Endpoint.Timeout),
		etf.WithPollInterval(cfg.Endpoint.PollInterval),
	}
	if cfg.Endpoint.Username != "" {
		opts = append(opts, etf.WithBasicAuth(cfg.Endpoint.Username, cfg.Endpoint.Password))
	}
	return etf.NewClient(cfg.Endpoint.URL, opts...)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
