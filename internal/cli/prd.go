package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/prompt"
)

var (
	prdPrompt string
	prdDir    string
)

var prdCmd = &cobra.Command{
	Use:   "prd",
	Short: "Create the requirements document and task list",
	Long: `Asks the agent to write the requirements document and a full task
list, from a free-text prompt, a directory scan, or both.

At least one of --prompt and --dir is required.

Example:
  sir prd --prompt "a CLI that mirrors RSS feeds to markdown"
  sir prd --dir ./legacy-app
  sir prd --prompt "port this to Go" --dir ./legacy-app`,
	RunE: runPrd,
}

func init() {
	prdCmd.Flags().StringVarP(&prdPrompt, "prompt", "p", "", "free-text description of what to build")
	prdCmd.Flags().StringVarP(&prdDir, "dir", "d", "", "directory for the agent to scan")
	rootCmd.AddCommand(prdCmd)
}

func runPrd(cmd *cobra.Command, args []string) error {
	// Validated before any agent work happens.
	if prdPrompt == "" && prdDir == "" {
		return fmt.Errorf("at least one of --prompt and --dir is required")
	}
	if err := checkDirFlag(prdDir); err != nil {
		return err
	}

	h, err := setup()
	if err != nil {
		return err
	}

	return h.runOnce(cmdContext(cmd), prompt.Create(h.cfg, prdPrompt, prdDir))
}

// checkDirFlag verifies an optional directory flag points at a real
// directory. Empty means unset and is fine.
func checkDirFlag(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("directory %s does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
