package prompt

import (
	"fmt"
	"strings"

	"github.com/andreiciceu/sir/internal/config"
)

const createTemplate = `# Create requirements and tasks

Produce the requirements document and a full task list for this project.

1. User prompt: %s
2. Directory to scan: %s
3. If a directory is given, read it to understand the existing codebase.
4. Write the requirements document to %s (overwrite freely).
5. Break the work into discrete, verifiable tasks and write %s as
   {"tasks": [...]} per the task schema. Every task starts with
   "passes": false.
6. Order tasks by dependency: setup first, then features, then tests.
7. Append a dated entry to the progress log summarizing what you created.
`

// Create builds the prd instruction block. Either userPrompt or scanDir
// may be empty; unset inputs render as "none".
func Create(cfg config.Config, userPrompt, scanDir string) string {
	return fmt.Sprintf(createTemplate,
		orNone(userPrompt),
		orNone(scanDir),
		cfg.PRDPath(),
		cfg.TasksPath(),
	)
}

const implementTemplate = `# Implement one task

Complete exactly one task from the task list, then stop.

1. Read %s and the requirements in %s.
2. Pick the highest-priority task with "passes": false. Respect "deps"
   if present.
3. Implement it following its steps. Consult %s for conventions.
4. Verify your work (run tests, build, or typecheck as the project
   allows). Only then set "passes": true for that one task.
5. Append a dated entry to %s describing what you did and how you
   verified it.
6. If every task now passes, emit %s. Otherwise emit %s.
`

// Implement builds the rafael single-task instruction block.
func Implement(cfg config.Config) string {
	return fmt.Sprintf(implementTemplate,
		cfg.TasksPath(),
		cfg.PRDPath(),
		cfg.GuidelinesPath(),
		cfg.ProgressPath(),
		TokenDone,
		TokenOK,
	)
}

const guidelinesTemplate = `# Generate guidelines

Write or refresh the engineering guidelines for this project.

1. Directory to scan: %s
2. Read the codebase (and %s if useful) to infer conventions: layout,
   naming, error handling, testing, tooling.
3. Write the guidelines to %s (overwrite freely). Keep them short and
   prescriptive; prefer observed conventions over invented ones.
4. Append a dated entry to the progress log.
`

// Guidelines builds the guidar instruction block.
func Guidelines(cfg config.Config, scanDir string) string {
	return fmt.Sprintf(guidelinesTemplate,
		orNone(scanDir),
		cfg.PRDPath(),
		cfg.GuidelinesPath(),
	)
}

const storiesTemplate = `# Generate user stories

Write or refresh the user stories for this project.

1. User prompt: %s
2. Read the requirements in %s and the task list in %s.
3. Write user stories to %s (overwrite freely): one story per user-facing
   capability, with acceptance criteria.
4. Append a dated entry to the progress log.
`

// Stories builds the storyteller instruction block.
func Stories(cfg config.Config, userPrompt string) string {
	return fmt.Sprintf(storiesTemplate,
		orNone(userPrompt),
		cfg.PRDPath(),
		cfg.TasksPath(),
		cfg.StoriesPath(),
	)
}

const reconcileTemplate = `# Reconcile inbox

Fold new inbox material into the project memory.

1. Inbox directory: %s
2. Already processed (skip these): %s
3. New files to process: %s
4. For each new file: read it, fold anything relevant into the
   requirements (%s), task list (%s), or stories (%s), then append the
   filename on its own line to %s.
5. Do not delete inbox files. Append a dated entry to the progress log
   summarizing what changed.
`

// Reconcile builds the projector instruction block. newFiles is the
// harness-computed set difference, passed along for convenience; the
// agent remains the authority on what has actually been processed.
func Reconcile(cfg config.Config, newFiles []string) string {
	return fmt.Sprintf(reconcileTemplate,
		cfg.InboxPath(),
		cfg.ProcessedPath(),
		orNone(strings.Join(newFiles, ", ")),
		cfg.PRDPath(),
		cfg.TasksPath(),
		cfg.StoriesPath(),
		cfg.ProcessedPath(),
	)
}

const menuTemplate = `# Interactive session

You are assisting interactively with a project whose memory lives in:

- Requirements: %s
- Task list: %s
- Progress log: %s
- Guidelines: %s
- User stories: %s
- Inbox: %s

Offer to review or edit any of these, answer questions about project
state, or discuss next steps. Edit files directly when asked.
`

// Menu builds the interactive-mode preamble.
func Menu(cfg config.Config) string {
	return fmt.Sprintf(menuTemplate,
		cfg.PRDPath(),
		cfg.TasksPath(),
		cfg.ProgressPath(),
		cfg.GuidelinesPath(),
		cfg.StoriesPath(),
		cfg.InboxPath(),
	)
}

// Compose joins the shared context and an instruction block into the
// full prompt handed to the agent.
func Compose(cfg config.Config, instruction string) string {
	return Context(cfg) + "\n" + instruction
}
