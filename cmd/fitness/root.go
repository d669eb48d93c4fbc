// ABOUTME: Root Cobra command for fitness CLI.
// ABOUTME: Loads config and opens the diary store via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/fitness/internal/config"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/logging"
	"github.com/harperreed/fitness/internal/lookup"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	store   storage.Store
	tracker *diary.Tracker
	logger  *log.Logger

	userFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fitness",
	Short: "Daily meal, exercise and weight diary",
	Long: `Fitness keeps a daily diary of meals, exercise and weight.

Every day has one diary per kind. Meal and exercise diaries carry a running
summary (calories, macros, minutes) that always matches their entries.

QUICK START:

  $ fitness meal add breakfast "Oatmeal" --calories 150 --carbs 27 --qty 2
  $ fitness exercise add running 30 --intensity high
  $ fitness weight add 82.5 --notes "morning"
  $ fitness meal show                      # Today's meals and totals
  $ fitness balance                        # Intake vs burnt vs requirement

WEEKLY VIEWS:

  $ fitness week nutrition                 # Calories and macros, last 7 days
  $ fitness week exercise                  # Workouts, last 7 days
  $ fitness weight history --range 1m      # Weight trend

STORAGE:

  Diaries live in SQLite at ~/.local/share/fitness/fitness.db by default.
  Switch with 'fitness config set backend <sqlite|postgres|badger|charm|dynamodb>'
  and copy existing data with 'fitness migrate --to <backend>'.
  The charm backend syncs across devices; see 'fitness sync'.

SERVERS:

  $ fitness mcp                            # MCP server on stdio
  $ fitness serve --listen :8080           # HTTP API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipsStore(cmd) {
			return nil
		}
		return openTracker(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

// skipsStore reports whether cmd runs without opening the diary store.
func skipsStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion", "install-skill":
		return true
	}
	if p := cmd.Parent(); p != nil {
		return p.Name() == "config" || p.Name() == "sync"
	}
	return false
}

func openTracker(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err = logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}

	store, err = cfg.OpenStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
	}

	tracker = diary.NewTracker(store, diary.Options{
		Requirements: cfg.Requirements(),
		Goals:        cfg.Goals(),
		Estimator:    lookup.METEstimator{WeightKg: cfg.Profile.WeightKg},
		Nutrition:    lookup.Descriptions{},
		Logger:       logger,
	})
	logger.Debug("store opened", "backend", cfg.GetBackend(), "user", currentUser())
	return nil
}

func closeStore() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	tracker = nil
	return err
}

// currentUser returns --user, else the configured user.
func currentUser() string {
	if userFlag != "" {
		return userFlag
	}
	return cfg.GetUserID()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (default: config user_id, then $USER)")
}
