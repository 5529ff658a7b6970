package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andreiciceu/sir/internal/testutil"
)

func TestContext_NamesAllStateFiles(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)
	text := Context(cfg)

	for _, path := range []string{
		cfg.PRDPath(), cfg.TasksPath(), cfg.ProgressPath(),
		cfg.GuidelinesPath(), cfg.StoriesPath(), cfg.InboxPath(), cfg.ProcessedPath(),
	} {
		assert.Contains(t, text, path)
	}
	assert.Contains(t, text, TokenDone)
	assert.Contains(t, text, TokenOK)
	assert.Contains(t, text, cfg.Tone)
}

func TestContext_Deterministic(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)
	assert.Equal(t, Context(cfg), Context(cfg))
}

func TestContext_QuestionsToggle(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)
	assert.Contains(t, Context(cfg), TokenAsk)

	cfg.AllowQuestions = false
	text := Context(cfg)
	assert.NotContains(t, text, TokenAsk)
	assert.Contains(t, text, "questions are disabled")
}

func TestCreate_OptionalInputs(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)

	text := Create(cfg, "build a todo app", "")
	assert.Contains(t, text, "build a todo app")
	assert.Contains(t, text, "Directory to scan: none")
	assert.Contains(t, text, cfg.PRDPath())
	assert.Contains(t, text, cfg.TasksPath())

	text = Create(cfg, "", "./src")
	assert.Contains(t, text, "User prompt: none")
	assert.Contains(t, text, "./src")
}

func TestImplement_NamesSentinels(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)
	text := Implement(cfg)

	assert.Contains(t, text, cfg.TasksPath())
	assert.Contains(t, text, cfg.ProgressPath())
	assert.Contains(t, text, TokenDone)
	assert.Contains(t, text, TokenOK)
	assert.Contains(t, text, "exactly one task")
}

func TestReconcile_ListsNewFiles(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)

	text := Reconcile(cfg, []string{"note.md", "call.txt"})
	assert.Contains(t, text, "note.md, call.txt")

	text = Reconcile(cfg, nil)
	assert.Contains(t, text, "New files to process: none")
}

func TestCompose_PrependsContext(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)
	full := Compose(cfg, Implement(cfg))

	assert.True(t, strings.HasPrefix(full, Context(cfg)))
	assert.Contains(t, full, "# Implement one task")
}

func TestGuidelinesAndStoriesAndMenu(t *testing.T) {
	t.Parallel()

	cfg := testutil.TestConfig(t)

	assert.Contains(t, Guidelines(cfg, "./lib"), "./lib")
	assert.Contains(t, Guidelines(cfg, ""), "Directory to scan: none")
	assert.Contains(t, Stories(cfg, "admin persona"), "admin persona")
	assert.Contains(t, Stories(cfg, ""), "User prompt: none")
	assert.Contains(t, Menu(cfg), cfg.TasksPath())
}
