// Package loop runs the rafael task-implementation loop: up to N agent
// invocations, each asked to complete one task, with the agent's output
// scanned for sentinel tokens to decide whether to stop early.
package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andreiciceu/sir/internal/agent"
	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/logging"
	"github.com/andreiciceu/sir/internal/prompt"
	"github.com/andreiciceu/sir/internal/state"
)

// ExitReason indicates why the loop stopped.
type ExitReason int

const (
	ExitReasonUnknown    ExitReason = iota
	ExitReasonDone                  // Completion sentinel seen
	ExitReasonBlocked               // Clarification sentinel seen
	ExitReasonFailed                // Agent invocation failed
	ExitReasonExhausted             // Iteration budget spent without completion
	ExitReasonCanceled              // Context canceled between iterations
)

// String returns a human-readable description of the exit reason.
func (r ExitReason) String() string {
	switch r {
	case ExitReasonDone:
		return "completed"
	case ExitReasonBlocked:
		return "blocked awaiting clarification"
	case ExitReasonFailed:
		return "agent invocation failed"
	case ExitReasonExhausted:
		return "iteration budget exhausted"
	case ExitReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a loop execution.
type Result struct {
	Reason     ExitReason
	Iterations int
	Output     string // Output of the final invocation
	Err        error  // Set when Reason is ExitReasonFailed
}

// Loop drives the bounded task-implementation loop.
type Loop struct {
	cfg        config.Config
	agent      agent.Agent
	store      *state.Store
	iterations int
}

// Options holds the dependencies for a Loop. Tests inject a scripted
// agent here.
type Options struct {
	Config     config.Config
	Agent      agent.Agent
	Store      *state.Store
	Iterations int // Budget N; must be non-negative
}

// New creates a Loop from explicit options.
func New(opts Options) *Loop {
	return &Loop{
		cfg:        opts.Config,
		agent:      opts.Agent,
		store:      opts.Store,
		iterations: opts.Iterations,
	}
}

// Run executes up to N iterations and returns why the loop stopped.
//
// Each iteration issues exactly one agent invocation; iteration i+1
// never starts before i's invocation returns. A budget of zero performs
// no invocations and exits successfully.
func (l *Loop) Run(ctx context.Context) Result {
	full := prompt.Compose(l.cfg, prompt.Implement(l.cfg))

	for i := 1; i <= l.iterations; i++ {
		if ctx.Err() != nil {
			return Result{Reason: ExitReasonCanceled, Iterations: i - 1}
		}

		logging.Info("starting iteration", "i", i, "of", l.iterations)

		output, err := l.agent.Invoke(ctx, full)
		if err != nil {
			return Result{
				Reason:     ExitReasonFailed,
				Iterations: i,
				Output:     output,
				Err:        fmt.Errorf("iteration %d: %w", i, err),
			}
		}

		l.recordProgress(i, output)

		switch Classify(l.cfg, output) {
		case ExitReasonBlocked:
			return Result{Reason: ExitReasonBlocked, Iterations: i, Output: output}
		case ExitReasonDone:
			return Result{Reason: ExitReasonDone, Iterations: i, Output: output}
		}
	}

	// ExitReasonExhausted is a success: the caller re-runs to continue.
	// A zero budget lands here with zero invocations performed.
	return Result{Reason: ExitReasonExhausted, Iterations: l.iterations}
}

// Classify scans agent output for the sentinel tokens. The ask token
// wins over the done token; when questions are disabled the ask token
// is ignored. Token absence means "continue" and never errors.
func Classify(cfg config.Config, output string) ExitReason {
	if cfg.AllowQuestions && strings.Contains(output, prompt.TokenAsk) {
		return ExitReasonBlocked
	}
	if strings.Contains(output, prompt.TokenDone) {
		return ExitReasonDone
	}
	return ExitReasonUnknown
}

// recordProgress appends a harness-side breadcrumb after an iteration.
// Best effort: the agent writes its own progress entries; a failure here
// never stops the loop.
func (l *Loop) recordProgress(i int, output string) {
	if l.store == nil {
		return
	}

	summary := fmt.Sprintf("sir rafael iteration %d/%d finished", i, l.iterations)
	if tasks, err := l.store.LoadTasks(); err == nil {
		summary += fmt.Sprintf(" (%d/%d tasks passing)", state.CountComplete(tasks), len(tasks))
	} else if errors.Is(err, state.ErrCorruptState) {
		logging.Warn("tasks file failed validation after iteration", "err", err)
	}

	if err := l.store.AppendProgress(summary); err != nil {
		logging.Warn("failed to append progress entry", "err", err)
	}
}
