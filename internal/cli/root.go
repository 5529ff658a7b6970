package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/logging"
)

// Version is set at build time via ldflags.
var Version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sir",
	Short: "AI agent harness over persisted project memory",
	Long: `Sir drives an external AI agent over a small set of persisted
project-state files: requirements, task list, progress log, guidelines,
user stories and an inbox. Each command assembles a context block plus a
task-specific instruction block, pipes it to the configured agent, and
relays the agent's output back to you.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.LevelDebug)
		}
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("sir version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug diagnostics on stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under the given context so a
// SIGINT can stop the loop between iterations.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
