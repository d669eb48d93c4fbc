// ABOUTME: CLI commands for viewing and changing configuration.
// ABOUTME: Edits the JSON config file without opening the diary store.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change configuration",
	Long: `View or change the config file at $XDG_CONFIG_HOME/fitness/config.json.

FITNESS_* environment variables and a .env file in the working directory
override the file, e.g. FITNESS_BACKEND=badger or FITNESS_PROFILE_WEIGHT_KG=80.

KEYS:

  backend               sqlite, postgres, badger, charm or dynamodb
  data_dir              directory for sqlite and badger data
  database_url          postgres connection string
  dynamo_table_prefix   prefix for the DynamoDB tables
  user_id               default user
  log_level             debug, info, warn or error
  listen                HTTP API address
  daily_calories        fixed daily caloric requirement
  profile.gender        male or female
  profile.age           years
  profile.height_cm     centimetres
  profile.weight_kg     kilograms
  profile.activity_level  sedentary, lightly active, moderately active,
                          very active or super active`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		fmt.Println()
		fmt.Printf("config file: %s\n", config.GetConfigPath())
		fmt.Printf("backend:     %s\n", c.GetBackend())
		fmt.Printf("data dir:    %s\n", c.GetDataDir())
		fmt.Printf("user:        %s\n", c.GetUserID())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value",
	Long: `Set a config value in the config file.

EXAMPLES:

  fitness config set backend badger
  fitness config set daily_calories 2200
  fitness config set profile.activity_level "moderately active"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Environment overrides must not be written back to the file.
		c, err := config.LoadFile()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := c.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		color.Green("✓ Set %s = %s", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
