// ABOUTME: CLI commands for exporting and importing diaries.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/harperreed/fitness/internal/models"
	"github.com/harperreed/fitness/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export [format]",
	Short: "Export diaries",
	Long: `Export meal, exercise and weight diaries.

FORMATS:

  json       Full JSON export (suitable for backup/restore, default)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --from         First date to include (YYYY-MM-DD)
  --to           Last date to include (YYYY-MM-DD)

EXAMPLES:

  fitness export                                  # Everything as JSON
  fitness export json -o backup.json              # Save to file
  fitness export markdown --from 2024-01-01       # 2024 onward as Markdown`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := "json"
		if len(args) == 1 {
			format = args[0]
		}

		start, end, err := exportRange(exportFrom, exportTo)
		if err != nil {
			return err
		}

		data, err := tracker.Export(cmd.Context(), currentUser(), start, end)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var out []byte
		switch format {
		case "json":
			out, err = data.ToJSON()
		case "yaml":
			out, err = data.ToYAML()
		case "markdown", "md":
			out = []byte(data.ToMarkdown())
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, out, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(out))
		}
		return nil
	},
}

// exportRange parses the --from/--to flags; empty bounds are open.
func exportRange(from, to string) (models.Date, models.Date, error) {
	start, end := models.Date(storage.MinDate), models.Date(storage.MaxDate)
	var err error
	if from != "" {
		if start, err = models.ParseDate(from); err != nil {
			return "", "", err
		}
	}
	if to != "" {
		if end, err = models.ParseDate(to); err != nil {
			return "", "", err
		}
	}
	if start > end {
		return "", "", fmt.Errorf("--from %s is after --to %s", start, end)
	}
	return start, end, nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import diaries from JSON",
	Long: `Import diaries from a JSON backup made with 'fitness export json'.

Each diary replaces any diary already stored for the same user and date.
Summaries are recomputed from the entries. Diaries keep the user recorded
in the file; diaries without one are imported for the current user.

EXAMPLES:

  fitness import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		data, err := diary.ParseExportJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		var summary *diary.ImportSummary
		err = bulkWrite(cfg.GetBackend(), func() error {
			summary, err = tracker.Import(cmd.Context(), currentUser(), data)
			return err
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported %d meal, %d exercise and %d weight diaries", summary.Meals, summary.Exercise, summary.Weight)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd, importCmd)
}
