package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trustvest/trustvest/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or show configuration files",
	Long: `Manage trustvest configuration files.

Subcommands:
  init - Generate a default configuration file
  show - Print the effective configuration after validation

Examples:
  trustvest config init -o trustvest.yaml
  trustvest config show -c trustvest.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitOutput string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "trustvest.yaml", "output config file path")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.Default().SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and run with:")
	fmt.Fprintf(out, "  trustvest sim -c %s\n", configInitOutput)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
