// Package cmd provides the CLI commands for landed-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"landed-cost/internal/config"
	"landed-cost/internal/logging"
)

// Version is the tool version (set by build flags)
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "landed-cost",
	Short: "Evaluate the total cost of importation of a shipment",
	Long: `landed-cost computes the landed cost (CTI) of an imported shipment.

It applies customs valuation (CIF, taxable base, duties, general taxes),
adds operative costs, estimates the expected cost and its dispersion under
a risk model, and projects the result over a time horizon.

Examples:
  landed-cost evaluate shipment.yaml
  landed-cost evaluate --fob 1000 --freight 100 --insurance 50 --duty-rate 0.1
  landed-cost evaluate --format json shipment.hcl
  landed-cost formulas`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.landed-cost.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(formulasCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultPath()
}

func initConfig() {
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "landed-cost version %s\n", Version)
	},
}
