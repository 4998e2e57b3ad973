// Command tripledger serves the trip expense ledger over Connect and REST.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tripledger/internal/config"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "tripledger",
	Short: "Shared trip expense ledger",
	Long:  "Track who paid for what on a trip, split costs and settle up.",
	RunE:  runServe,
	// Errors are logged by the commands themselves.
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (yaml, json or toml); environment variables take precedence")
}

// loadConfig loads and validates the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
