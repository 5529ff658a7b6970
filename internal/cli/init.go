package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/state"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the project memory layout",
	Long: `Creates the memory directory with every tracked state file in its
minimal empty form, plus a commented .sir/config.yaml.

Safe to run repeatedly: existing files are never touched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store := state.NewStore(cfg)
	if err := store.EnsureInitialized(); err != nil {
		return err
	}

	if err := writeConfigYAML(cfg); err != nil {
		return err
	}

	fmt.Printf("Initialized project memory at %s\n", cfg.MemoryPath())
	fmt.Printf("  Requirements: %s\n", cfg.PRDPath())
	fmt.Printf("  Tasks:        %s\n", cfg.TasksPath())
	fmt.Printf("  Progress:     %s\n", cfg.ProgressPath())
	fmt.Printf("  Guidelines:   %s\n", cfg.GuidelinesPath())
	fmt.Printf("  Stories:      %s\n", cfg.StoriesPath())
	fmt.Printf("  Inbox:        %s%c\n", cfg.InboxPath(), os.PathSeparator)
	fmt.Printf("  Processed:    %s\n", cfg.ProcessedPath())
	return nil
}

// writeConfigYAML drops a commented config file on first init only.
func writeConfigYAML(cfg config.Config) error {
	sirDir := filepath.Join(cfg.Root, ".sir")
	if err := os.MkdirAll(sirDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", sirDir, err)
	}

	path := filepath.Join(sirDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	content := `# sir configuration

loop:
  # Default rafael iteration budget (overridden by --loop)
  max_iterations: 10

  # Whether the agent may stop and ask for human clarification
  allow_questions: true
`
	return os.WriteFile(path, []byte(content), 0o644)
}
