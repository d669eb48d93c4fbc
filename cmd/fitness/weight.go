// ABOUTME: CLI commands for the weight diary.
// ABOUTME: Adds, removes and shows weights and prints weight history.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/diary"
	"github.com/spf13/cobra"
)

var (
	weightNotes string
	weightAt    string
	weightDate  string
	weightRange string
)

var weightCmd = &cobra.Command{
	Use:   "weight",
	Short: "Manage the weight diary",
}

var weightAddCmd = &cobra.Command{
	Use:   "add <kg>",
	Short: "Log a weight",
	Long: `Log a body weight in kilograms.

EXAMPLES:

  fitness weight add 82.5
  fitness weight add 82.1 --notes "after run" --at "2024-01-05 07:30"`,
	Aliases: []string{"log"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", args[0], err)
		}

		req := diary.WeightRequest{WeightInKg: kg, Notes: weightNotes}
		dateFlag := weightDate
		if weightAt != "" {
			at, err := parseTime(weightAt)
			if err != nil {
				return fmt.Errorf("invalid --at %q: %w", weightAt, err)
			}
			req.Timestamp = &at
			if dateFlag == "" {
				dateFlag = at.Format("2006-01-02")
			}
		}

		date, err := diaryDate(dateFlag)
		if err != nil {
			return err
		}

		doc, entry, err := tracker.LogWeight(cmd.Context(), currentUser(), date, req)
		if err != nil {
			return err
		}

		color.Green("✓ Added weight %.1f kg", entry.WeightInKg)
		fmt.Printf("  %s %d weight(s) on %s\n", faintID(entry.ID), doc.Len(), doc.Date)
		return nil
	},
}

var weightRmCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"delete", "del"},
	Short:   "Remove a weight by position",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(weightDate)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid index %q: %w", args[0], err)
		}

		_, entry, err := tracker.DeleteWeight(cmd.Context(), currentUser(), date, index)
		if err != nil {
			return err
		}

		color.Green("✓ Removed weight %.1f kg", entry.WeightInKg)
		return nil
	},
}

var weightShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls", "list"},
	Short:   "Show a day's weights",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := diaryDate(weightDate)
		if err != nil {
			return err
		}

		doc, err := tracker.Weight.Get(cmd.Context(), currentUser(), date)
		if err != nil {
			if errors.Is(err, diary.ErrNotFound) {
				fmt.Printf("No weight logged on %s.\n", date)
				return nil
			}
			return err
		}

		header("Weight on %s", doc.Date)
		for i, e := range doc.List("weights") {
			when := ""
			if e.Timestamp != nil {
				when = humanize.Time(*e.Timestamp)
			}
			notes := ""
			if e.Notes != nil {
				notes = truncate(*e.Notes, 40)
			}
			fmt.Printf("  %d  %s %6.1f kg  %s %s\n", i, faintID(e.ID), e.WeightInKg, padRight(when, 16), notes)
		}
		return nil
	},
}

var weightHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show weight over a range",
	Long: `Show weights logged over a range ending today.

Ranges: 1d, 1w, 1m, 3m, 6m, 1y.

EXAMPLES:

  fitness weight history
  fitness weight history --range 3m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := tracker.WeightHistory(cmd.Context(), currentUser(), weightRange)
		if err != nil {
			return err
		}

		header("Weight %s to %s", h.StartDate, h.EndDate)
		if len(h.Points) == 0 {
			fmt.Println("No weights logged.")
			return nil
		}
		for _, p := range h.Points {
			fmt.Printf("  %s  %6.1f kg\n", p.Date, p.WeightInKg)
		}
		fmt.Println()
		change := fmt.Sprintf("%+.1f kg", h.Change)
		switch {
		case h.Change < 0:
			change = color.GreenString(change)
		case h.Change > 0:
			change = color.YellowString(change)
		}
		fmt.Printf("Change: %s\n", change)
		return nil
	},
}

func init() {
	weightAddCmd.Flags().StringVar(&weightNotes, "notes", "", "notes for the weight")
	weightAddCmd.Flags().StringVar(&weightAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	weightHistoryCmd.Flags().StringVarP(&weightRange, "range", "r", "1w", "1d, 1w, 1m, 3m, 6m or 1y")

	weightCmd.PersistentFlags().StringVarP(&weightDate, "date", "d", "", "diary date (YYYY-MM-DD, default today)")

	weightCmd.AddCommand(weightAddCmd, weightRmCmd, weightShowCmd, weightHistoryCmd)
	rootCmd.AddCommand(weightCmd)
}
