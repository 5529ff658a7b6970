package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/logging"
)

// Runner executes the configured agent command as a local subprocess.
//
// The prompt travels on standard input, never as an argument, to avoid
// shell length and quoting limits. Output is relayed to the caller's
// terminal as it arrives and captured for sentinel scanning.
type Runner struct {
	cfg config.Config

	// Stdout and Stderr receive the relayed process output. They default
	// to os.Stdout and os.Stderr; tests swap in buffers.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a subprocess-backed Runner.
func NewRunner(cfg config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Invoke runs one agent invocation and returns its combined output.
func (r *Runner) Invoke(ctx context.Context, prompt string) (string, error) {
	if r.cfg.AgentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.AgentTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.cfg.AgentCmd, r.cfg.AgentArgs...)
	cmd.Dir = r.cfg.Root
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = os.Environ()

	// Relay and capture at the same time. The captured combined output
	// is what the dispatcher scans for sentinel tokens.
	var combined bytes.Buffer
	cmd.Stdout = io.MultiWriter(r.Stdout, &combined)
	cmd.Stderr = io.MultiWriter(r.Stderr, &combined)

	logging.Debug("invoking agent", "cmd", r.cfg.AgentCmd, "prompt_bytes", len(prompt))

	err := cmd.Run()
	output := combined.String()
	if err == nil {
		return output, nil
	}

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return output, fmt.Errorf("agent timed out after %s: %w", r.cfg.AgentTimeout, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logging.Warn("agent exited non-zero", "code", exitErr.ExitCode())
		return output, &InvocationError{ExitCode: exitErr.ExitCode(), Output: output}
	}

	return output, fmt.Errorf("failed to run agent: %w", err)
}

var _ Agent = (*Runner)(nil)
