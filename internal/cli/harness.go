package cli

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/andreiciceu/sir/internal/agent"
	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/loop"
	"github.com/andreiciceu/sir/internal/prompt"
	"github.com/andreiciceu/sir/internal/state"
)

// Exit codes. Budget exhaustion is a success: re-run to continue.
const (
	ExitOK      = 0
	ExitFatal   = 1
	ExitBlocked = 3
)

// ErrBlocked marks the normal, expected outcome of an agent asking for
// human clarification. Not a failure; mapped to ExitBlocked so
// orchestration scripts can branch on it.
var ErrBlocked = errors.New("blocked awaiting human clarification")

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrBlocked) {
		return ExitBlocked
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Interactive mode relays the child's own status.
		return exitErr.ExitCode()
	}
	return ExitFatal
}

// newAgent builds the production subprocess agent after verifying the
// configured executable resolves. Tests swap this for a scripted fake.
var newAgent = func(cfg config.Config) (agent.Agent, error) {
	if err := agent.Check(cfg); err != nil {
		return nil, err
	}
	return agent.NewRunner(cfg), nil
}

// harness bundles the pieces every agent-invoking command needs.
type harness struct {
	cfg   config.Config
	store *state.Store
	agent agent.Agent
}

// setup loads configuration, verifies the agent is available, and makes
// sure the state files exist. Run before every command.
func setup() (*harness, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	ag, err := newAgent(cfg)
	if err != nil {
		return nil, err
	}

	store := state.NewStore(cfg)
	if err := store.EnsureInitialized(); err != nil {
		return nil, err
	}

	return &harness{cfg: cfg, store: store, agent: ag}, nil
}

// runOnce performs a single build-prompt/invoke/relay cycle under the
// state lock and classifies the outcome.
func (h *harness) runOnce(ctx context.Context, instruction string) error {
	if err := h.store.Acquire(); err != nil {
		return err
	}
	defer h.store.Release()

	output, err := h.agent.Invoke(ctx, prompt.Compose(h.cfg, instruction))
	if err != nil {
		return fmt.Errorf("agent invocation failed: %w", err)
	}

	if loop.Classify(h.cfg, output) == loop.ExitReasonBlocked {
		return ErrBlocked
	}
	return nil
}

// cmdContext returns the cobra command context, falling back to
// Background for direct test invocations.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
