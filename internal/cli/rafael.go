package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/loop"
)

var rafaelLoop int

var rafaelCmd = &cobra.Command{
	Use:   "rafael",
	Short: "Run the task-implementation loop",
	Long: `Runs up to N agent invocations, each asked to complete one task from
the task list. The loop stops early when the agent signals completion or
asks for clarification, or when an invocation fails.

Exit status: 0 on completion or an exhausted budget (re-run to
continue), 3 when blocked awaiting clarification, 1 on failure.

Example:
  sir rafael
  sir rafael --loop 3`,
	RunE: runRafael,
}

func init() {
	rafaelCmd.Flags().IntVarP(&rafaelLoop, "loop", "n", -1, "iteration budget (overrides loop.max_iterations)")
	// -1 is the "use the configured budget" sentinel; show the real
	// default in help instead.
	rafaelCmd.Flags().Lookup("loop").DefValue = strconv.Itoa(config.DefaultMaxIterations)
	rafaelCmd.Flags().SetNormalizeFunc(normalizeRafaelFlags)
	rootCmd.AddCommand(rafaelCmd)
}

// normalizeRafaelFlags accepts --iterations as an alias for --loop.
func normalizeRafaelFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "iterations" {
		name = "loop"
	}
	return pflag.NormalizedName(name)
}

func runRafael(cmd *cobra.Command, args []string) error {
	// Validated before any agent work happens.
	if cmd.Flags().Changed("loop") && rafaelLoop < 0 {
		return fmt.Errorf("--loop must be a non-negative integer, got %d", rafaelLoop)
	}

	h, err := setup()
	if err != nil {
		return err
	}

	budget := h.cfg.MaxIterations
	if cmd.Flags().Changed("loop") {
		budget = rafaelLoop
	}

	if err := h.store.Acquire(); err != nil {
		return err
	}
	defer h.store.Release()

	l := loop.New(loop.Options{
		Config:     h.cfg,
		Agent:      h.agent,
		Store:      h.store,
		Iterations: budget,
	})

	result := l.Run(cmdContext(cmd))
	fmt.Printf("\nrafael stopped after %d iteration(s): %s\n", result.Iterations, result.Reason)

	switch result.Reason {
	case loop.ExitReasonBlocked:
		return ErrBlocked
	case loop.ExitReasonFailed:
		return result.Err
	case loop.ExitReasonCanceled:
		return fmt.Errorf("interrupted")
	default:
		return nil
	}
}
