// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/fitness/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and logs to stderr.

CONFIGURATION:

  {
    "mcpServers": {
      "fitness": {
        "command": "fitness",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_meal           Log a food in a meal
  log_exercise       Log an exercise session
  log_weight         Log a weight
  delete_meal        Remove a food by meal type and position
  delete_exercise    Remove an exercise by position and type
  delete_weight      Remove a weight by position
  get_diary          Get a day's meal, exercise and weight diaries
  weekly_nutrition   Calories and macros for the last 7 days
  weekly_exercise    Workouts for the last 7 days
  caloric_balance    Intake vs burnt for a date
  weight_history     Weight over a range

AVAILABLE RESOURCES:

  fitness://today    Today's diaries and balance
  fitness://week     Weekly nutrition, exercise and weight`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(tracker, currentUser(), logger)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
