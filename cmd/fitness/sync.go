// ABOUTME: CLI commands for Charm-based sync of the charm backend.
// ABOUTME: Supports link, unlink, status, now, repair, reset, and wipe operations.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/fitness/internal/charm"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync diaries across devices",
	Long: `Sync diaries across devices using Charm Cloud.

Applies to the charm backend ('fitness config set backend charm').
Your data is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     fitness sync link

  2. On other devices, link with the same Charm account:
     fitness sync link

  3. Check sync status:
     fitness sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Sync with Charm Cloud immediately
  repair      Repair database corruption
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Diaries sync automatically after each write.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.

Example:
  fitness sync link`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}
		color.Green("\n✓ Device linked to Charm")

		client, err := charm.InitClient()
		if err != nil {
			color.Yellow("⚠ Initial sync skipped: %v", err)
			return nil
		}
		defer client.Close()
		if err := client.Sync(); err != nil {
			color.Yellow("⚠ Initial sync failed: %v", err)
		} else {
			color.Green("✓ Initial sync complete")
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local diaries.
You can link again later with 'fitness sync link'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}
		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local diaries are preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Charm account info
- Whether another process holds the database
- Number of diaries stored locally`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.InitClient()
		if err != nil {
			color.Yellow("Charm client not initialized: %v", err)
			fmt.Println("\nRun 'fitness sync link' to connect to Charm.")
			return nil
		}
		defer client.Close()

		id, err := client.ID()
		if err != nil {
			color.Yellow("Not linked to Charm")
			fmt.Println("\nRun 'fitness sync link' to connect to Charm.")
			return nil
		}

		fmt.Println("Charm ID:", id)
		fmt.Println("Server:", charm.Host())
		fmt.Println()

		var diaries int
		if err := client.Scan(nil, func(key, value []byte) error {
			diaries++
			return nil
		}); err != nil {
			return fmt.Errorf("failed to count diaries: %w", err)
		}

		color.Green("✓ Connected to Charm")
		fmt.Printf("  Diaries: %d\n", diaries)
		if client.IsReadOnly() {
			color.Yellow("  Read-only: another process (MCP server?) holds the database")
		}
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync with Charm Cloud immediately",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := charm.InitClient()
		if err != nil {
			return fmt.Errorf("init charm: %w", err)
		}
		defer client.Close()

		if client.IsReadOnly() {
			return charm.ErrReadOnly
		}
		if err := client.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		color.Green("✓ Synced with %s", charm.Host())
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing fitness database...")
		result, err := kv.Repair(charm.DBName, force)
		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete all local diaries and restore from Charm Cloud.

This is a destructive operation. All local data will be lost and restored from cloud.
Use this to:
- Fix sync conflicts
- Reset a device to cloud state`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE all local diaries and restore from cloud.")
		fmt.Print("Continue? [y/N]: ")
		if !confirmed(cmd.InOrStdin(), "y", "Y") {
			fmt.Println("Canceled.")
			return nil
		}

		client, err := charm.InitClient()
		if err != nil {
			return fmt.Errorf("init charm: %w", err)
		}
		defer client.Close()

		if err := client.Reset(); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		color.Green("✓ Local data reset and restored from cloud")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and local diaries.

This is a DESTRUCTIVE operation. ALL data will be permanently deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will PERMANENTLY DELETE all cloud backups and local diaries.")
		fmt.Print("Type 'wipe' to confirm: ")
		if !confirmed(cmd.InOrStdin(), "wipe") {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Data wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

// runCharm runs the charm CLI attached to the terminal.
func runCharm(arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

// confirmed reads one line from in and reports whether it is one of answers.
func confirmed(in io.Reader, answers ...string) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(line)
	for _, a := range answers {
		if line == a {
			return true
		}
	}
	return false
}

// bulkWrite runs fn with per-write sync paused on the charm backend, then syncs once.
func bulkWrite(backend string, fn func() error) error {
	if backend != "charm" {
		return fn()
	}
	client, err := charm.InitClient()
	if err != nil {
		return fmt.Errorf("init charm: %w", err)
	}
	client.SetAutoSync(false)
	defer client.SetAutoSync(true)

	if err := fn(); err != nil {
		return err
	}
	return client.Sync()
}

func init() {
	syncCmd.AddCommand(syncLinkCmd, syncUnlinkCmd, syncStatusCmd, syncNowCmd, syncRepairCmd, syncResetCmd, syncWipeCmd)
	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")
	rootCmd.AddCommand(syncCmd)
}
