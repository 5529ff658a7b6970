// Package agent invokes the external AI process. The agent is opaque:
// the harness hands it a prompt on standard input, captures whatever
// text comes back, and leaves all judgment to the process itself.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/andreiciceu/sir/internal/config"
)

// Agent is the narrow interface between the harness and the AI process.
type Agent interface {
	// Invoke sends the full prompt to the agent and returns its combined
	// textual output. A non-nil error of type *InvocationError means the
	// process ran but exited non-zero; the partial output is still
	// returned alongside it.
	Invoke(ctx context.Context, prompt string) (string, error)
}

// ErrAgentUnavailable means the configured agent executable cannot be
// resolved on the path. Checked once before any command runs.
var ErrAgentUnavailable = errors.New("agent command not found")

// InvocationError reports an agent process that ran but exited non-zero.
type InvocationError struct {
	ExitCode int
	Output   string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("agent exited with code %d", e.ExitCode)
}

// Check verifies that the configured agent executable can be located.
func Check(cfg config.Config) error {
	if _, err := exec.LookPath(cfg.AgentCmd); err != nil {
		return fmt.Errorf("%w: %q (set SIR_AGENT_CMD)", ErrAgentUnavailable, cfg.AgentCmd)
	}
	return nil
}
