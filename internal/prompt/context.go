// Package prompt assembles the text sent to the agent: a shared context
// preamble naming the state files and operating rules, plus one
// instruction block per command. Everything here is a pure function of
// the configuration; templates are static text with interpolation only.
package prompt

import (
	"fmt"
	"strings"

	"github.com/andreiciceu/sir/internal/config"
)

// Sentinel tokens the agent must emit. The dispatcher scans output for
// these exact literals; absence of every token means "continue".
const (
	// TokenDone signals that every task is complete.
	TokenDone = "<SIR:DONE>"
	// TokenAsk signals that the agent needs a human answer to proceed.
	TokenAsk = "<SIR:ASK>"
	// TokenOK signals a finished iteration with work remaining.
	TokenOK = "<SIR:OK>"
)

const contextTemplate = `# sir context

You are an autonomous engineering assistant working inside a project.
Your invocations are orchestrated by sir, which persists project memory
in the files below. You read and edit these files directly.

## State files

- Requirements: %s
- Task list: %s
- Progress log: %s (append-only; never rewrite existing lines)
- Guidelines: %s
- User stories: %s
- Inbox: %s
- Processed inbox markers: %s

## Task schema

The task list is JSON of the form {"tasks": [...]} where each task has a
unique stable "id", a "title", a "description", ordered "steps", and a
"passes" boolean. Only set "passes": true after verifying the work
(tests, build, or typecheck). Never reuse or renumber ids.

## Operating rules

- Edit files directly. Make minimal changes.
- One task per invocation. Keep each change committable.
- Append a dated entry to the progress log after substantive work.
- %s
- When every task passes, emit %s on its own line.
- When an iteration finishes with work remaining, emit %s.
- Style: %s
`

const (
	questionsAllowed = "If you are blocked and need a human answer, emit " +
		TokenAsk + " followed by your question, then stop."
	questionsDenied = "Clarification questions are disabled for this run. " +
		"Make a reasonable decision, note it in the progress log, and continue."
)

// Context builds the shared preamble injected into every invocation.
// Deterministic given the configuration; no side effects.
func Context(cfg config.Config) string {
	rule := questionsAllowed
	if !cfg.AllowQuestions {
		rule = questionsDenied
	}

	return fmt.Sprintf(contextTemplate,
		cfg.PRDPath(),
		cfg.TasksPath(),
		cfg.ProgressPath(),
		cfg.GuidelinesPath(),
		cfg.StoriesPath(),
		cfg.InboxPath(),
		cfg.ProcessedPath(),
		rule,
		TokenDone,
		TokenOK,
		cfg.Tone,
	)
}

// orNone renders unset optional inputs as the literal "none".
func orNone(value string) string {
	if strings.TrimSpace(value) == "" {
		return "none"
	}
	return value
}
