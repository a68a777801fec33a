package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebook/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage tradebook configuration files.

Subcommands:
  init     - Write a default configuration file
  validate - Check an existing configuration file

Examples:
  tradebook config init -o tradebook.yaml
  tradebook config validate -f tradebook.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Create a configuration file with default settings. API keys are left
empty; set ALPHAVANTAGE_API_KEY or FMP_API_KEY in the environment or a .env
file instead of committing them.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "tradebook.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	_ = configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if err := c.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(w, "\nEdit the file and run with:")
	fmt.Fprintf(w, "  tradebook --config %s dashboard\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(w, "  Database: %s\n", c.Database.Path)
	fmt.Fprintf(w, "  Enrich:   %s (%.1f req/s, schedule %q)\n", c.Enrich.Provider, c.Enrich.RequestsPerSecond, c.Enrich.Schedule)
	fmt.Fprintf(w, "  Server:   %s\n", c.Server.Addr)
	fmt.Fprintf(w, "  Taxes:    federal %.2f%%, state %.2f%%\n", c.Tax.FederalRate*100, c.Tax.StateRate*100)
	if c.Console.Enabled {
		fmt.Fprintln(w, "  Console:  enabled (requires --allow-sql)")
	}
	return nil
}
