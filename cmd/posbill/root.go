package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"lounge-pos-billing/internal/bootstrap"
	"lounge-pos-billing/internal/config"
	"lounge-pos-billing/internal/logger"
)

// cfgFile is only read by commands that talk to the backend
var cfgFile string

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "posbill",
	Short: "Dual-currency billing calculator for the lounge POS",
	Long: `posbill prices gaming sessions, discounts and change in USD and LBP.

The cost, discount, change and convert commands work offline from the figures
given on the command line. refresh-rate, active and watch read the backend
named in the configuration file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.InitializeWriter(os.Stderr, level, "text")
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.dev.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")
}

// openApp loads the configuration and connects to its backend
func openApp() (*bootstrap.App, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger.SetCronLevel(cfg.Log.CronLevel)
	if verbose {
		logger.InitializeWriter(os.Stderr, "debug", cfg.Log.Format)
	}
	app, err := bootstrap.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return app, cfg, nil
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
