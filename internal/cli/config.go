package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the cct config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.json with the current settings as a starting point",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ConfigExists() {
			fmt.Printf("Config already exists at %s\n", cfg.ConfigPath())
			return nil
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		successColor.Printf("Wrote %s\n", cfg.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
