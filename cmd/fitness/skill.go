// ABOUTME: Installs the fitness assistant skill.
// ABOUTME: Embeds the skill definition and writes it to ~/.claude/skills/fitness/.
package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

var skillSkipConfirm bool

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install the assistant skill",
	Long: `Install the fitness skill for coding assistants.

This copies the skill definition to ~/.claude/skills/fitness/
so the assistant can log meals, exercise and weight with this CLI.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return installSkill(home, os.Stdin, os.Stdout, skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(installSkillCmd)
}

// installSkill writes the embedded skill under home, asking on in unless skipConfirm.
func installSkill(home string, in io.Reader, out io.Writer, skipConfirm bool) error {
	skillDir := filepath.Join(home, ".claude", "skills", "fitness")
	skillPath := filepath.Join(skillDir, "SKILL.md")

	fmt.Fprintln(out, "This will install the fitness skill, enabling your assistant to:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  • Log meals, exercise and weight")
	fmt.Fprintln(out, "  • Report daily caloric balance")
	fmt.Fprintln(out, "  • Summarize the last week of nutrition and workouts")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Destination:\n  %s\n\n", skillPath)

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(out, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(out)
	}

	if !skipConfirm {
		fmt.Fprint(out, "Install the fitness skill? [y/N] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
		fmt.Fprintln(out)
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✓ Installed fitness skill"))
	return nil
}
