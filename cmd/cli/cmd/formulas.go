// Package cmd - formulas and config commands
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"landed-cost/core/output"
	"landed-cost/internal/config"
)

// formulasCmd prints the reference formulas
var formulasCmd = &cobra.Command{
	Use:   "formulas",
	Short: "Print the formulas used by the evaluation",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		for _, f := range output.Formulas {
			fmt.Fprintf(w, "%-6s %s\n", f.Name, f.Expression)
		}
		fmt.Fprintf(w, "\nSummary: %s\n", output.SummaryCaption)
	},
}

var forceInit bool

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(config.Get())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
