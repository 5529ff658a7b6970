package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/prompt"
	"github.com/andreiciceu/sir/internal/state"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session over the project memory",
	Long: `Hands an assembled menu prompt to the interactive agent command with
your terminal attached, then exits with that process's status.

The interactive command is configured via SIR_CHAT_CMD.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// isTerminal is swapped in tests.
var isTerminal = func(fd int) bool { return term.IsTerminal(fd) }

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !isTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("chat needs a terminal; run it interactively")
	}

	if _, err := exec.LookPath(cfg.ChatCmd); err != nil {
		return fmt.Errorf("interactive command %q not found (set SIR_CHAT_CMD)", cfg.ChatCmd)
	}

	store := state.NewStore(cfg)
	if err := store.EnsureInitialized(); err != nil {
		return err
	}

	// The terminal belongs to the child from here on; the menu prompt
	// rides as an argument because stdin stays interactive.
	child := exec.CommandContext(cmdContext(cmd), cfg.ChatCmd, prompt.Menu(cfg))
	child.Dir = cfg.Root
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	child.Env = os.Environ()

	return child.Run()
}
