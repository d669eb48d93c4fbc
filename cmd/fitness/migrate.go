// ABOUTME: CLI command for copying diaries between storage backends.
// ABOUTME: Reads from the configured backend and writes to the --to backend.
package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo    string
	migrateFrom  string
	migrateUntil string
	migrateForce bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --to <backend>",
	Short: "Copy diaries to another storage backend",
	Long: `Copy the current user's diaries from the configured backend to another.

Diaries already stored in the destination for the same date are replaced.
The configured backend is not changed; run 'fitness config set backend <name>'
afterwards to switch.

BACKENDS:

  sqlite     Local SQLite file in data_dir (default)
  postgres   Postgres at database_url
  badger     Local Badger directory in data_dir
  charm      Charm KV with cloud sync
  dynamodb   DynamoDB tables with dynamo_table_prefix

EXAMPLES:

  fitness migrate --to badger
  fitness migrate --to postgres --from 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		to := strings.ToLower(migrateTo)
		if to == cfg.GetBackend() {
			return fmt.Errorf("destination %q is the configured backend", to)
		}

		start, end, err := exportRange(migrateFrom, migrateUntil)
		if err != nil {
			return err
		}

		if !migrateForce {
			if err := checkDestinationEmpty(to); err != nil {
				return err
			}
		}

		dst, err := cfg.OpenBackend(cmd.Context(), to)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", to, err)
		}
		defer dst.Close()

		user := currentUser()
		var summary *storage.MigrateSummary
		err = bulkWrite(to, func() error {
			summary, err = storage.MigrateData(cmd.Context(), store, dst, storage.MigrateOptions{
				UserID: user,
				Start:  string(start),
				End:    string(end),
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		kinds := make([]string, 0, len(summary.Documents))
		for k := range summary.Documents {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("  %s %d\n", padRight(k, 10), summary.Documents[k])
		}
		color.Green("✓ Copied %d diaries for %s from %s to %s", summary.Total(), user, cfg.GetBackend(), to)
		return nil
	},
}

// checkDestinationEmpty refuses local destinations that already hold data.
func checkDestinationEmpty(backend string) error {
	var dir string
	switch backend {
	case "badger":
		dir = filepath.Join(cfg.GetDataDir(), "badger")
	default:
		return nil
	}
	nonEmpty, err := storage.IsDirNonEmpty(dir)
	if err != nil {
		return err
	}
	if nonEmpty {
		return fmt.Errorf("%s already has data at %s (use --force to merge)", backend, dir)
	}
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "first date to copy (YYYY-MM-DD)")
	migrateCmd.Flags().StringVar(&migrateUntil, "until", "", "last date to copy (YYYY-MM-DD)")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a destination that already has data")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
