// Package testutil provides shared fixtures for sir tests: a temp state
// root wired into a Config, and sample task lists.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/state"
)

// TestConfig returns a Config rooted in a fresh temp directory with the
// default file layout. The directory is cleaned up with the test.
func TestConfig(t *testing.T) config.Config {
	t.Helper()

	return config.Config{
		Root:           t.TempDir(),
		MemoryDir:      "memory",
		PRDFile:        "PRD.md",
		TasksFile:      "tasks.json",
		ProgressFile:   "progress.txt",
		GuidelinesFile: "GUIDELINES.md",
		StoriesFile:    "stories.md",
		InboxDir:       "inbox",
		ProcessedFile:  "processed.txt",
		AgentCmd:       "sh",
		AgentArgs:      []string{"-c", "cat >/dev/null"},
		ChatCmd:        "sh",
		Tone:           "be terse",
		AllowQuestions: true,
		MaxIterations:  config.DefaultMaxIterations,
	}
}

// SetupStore creates an initialized Store over a fresh temp root.
func SetupStore(t *testing.T) (config.Config, *state.Store) {
	t.Helper()

	cfg := TestConfig(t)
	store := state.NewStore(cfg)
	require.NoError(t, store.EnsureInitialized())
	return cfg, store
}

// SampleTasks returns a fresh slice of sample tasks.
// Returns a new slice each time to prevent test interference.
func SampleTasks() []state.Task {
	return []state.Task{
		{
			ID:          "t1",
			Title:       "Create configuration file",
			Description: "Set up the default configuration",
			Steps:       []string{"Create config directory", "Write default config"},
		},
		{
			ID:          "t2",
			Title:       "Implement main logic",
			Description: "Core behavior with error handling",
			Steps:       []string{"Implement core function", "Add error handling"},
			Deps:        []string{"t1"},
		},
		{
			ID:          "t3",
			Title:       "Add unit tests",
			Description: "Cover the core behavior",
			Steps:       []string{"Write test cases", "Verify coverage"},
			Deps:        []string{"t2"},
		},
	}
}

// SampleTasksPartiallyComplete returns SampleTasks with the first done.
func SampleTasksPartiallyComplete() []state.Task {
	tasks := SampleTasks()
	tasks[0].Passes = true
	return tasks
}

// SampleTasksAllComplete returns SampleTasks with every task done.
func SampleTasksAllComplete() []state.Task {
	tasks := SampleTasks()
	for i := range tasks {
		tasks[i].Passes = true
	}
	return tasks
}
