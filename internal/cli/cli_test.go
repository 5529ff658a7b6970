package cli

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreiciceu/sir/internal/agent"
	"github.com/andreiciceu/sir/internal/config"
	"github.com/andreiciceu/sir/internal/prompt"
)

// setTestRoot points SIR_ROOT at a fresh temp directory.
func setTestRoot(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("SIR_ROOT", tmpDir)
	return tmpDir
}

// useScripted swaps the production agent constructor for a scripted fake.
func useScripted(t *testing.T, s *agent.Scripted) {
	t.Helper()
	orig := newAgent
	newAgent = func(cfg config.Config) (agent.Agent, error) { return s, nil }
	t.Cleanup(func() { newAgent = orig })
}

// resetFlags restores package-level flag state between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	prdPrompt, prdDir = "", ""
	guidarDir = ""
	storytellerPrompt = ""
	rafaelLoop = -1
	rafaelCmd.Flags().Lookup("loop").Changed = false
}

func setLoopFlag(t *testing.T, value string) {
	t.Helper()
	require.NoError(t, rafaelCmd.Flags().Set("loop", value))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitBlocked, ExitCode(ErrBlocked))
	assert.Equal(t, ExitFatal, ExitCode(errors.New("boom")))

	// Interactive mode relays the child's own status.
	err := exec.Command("sh", "-c", "exit 5").Run()
	require.Error(t, err)
	assert.Equal(t, 5, ExitCode(err))
}

func TestInitCommand(t *testing.T) {
	tmpDir := setTestRoot(t)
	resetFlags(t)

	require.NoError(t, runInit(initCmd, nil))

	memDir := filepath.Join(tmpDir, "memory")
	for _, name := range []string{"PRD.md", "progress.txt", "GUIDELINES.md", "stories.md", "processed.txt", "tasks.json"} {
		_, err := os.Stat(filepath.Join(memDir, name))
		assert.NoError(t, err, name)
	}

	info, err := os.Stat(filepath.Join(memDir, "inbox"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(filepath.Join(memDir, "tasks.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks": []}`, string(data))

	// Second run is idempotent and keeps existing content.
	require.NoError(t, os.WriteFile(filepath.Join(memDir, "PRD.md"), []byte("kept"), 0o644))
	require.NoError(t, runInit(initCmd, nil))

	content, err := os.ReadFile(filepath.Join(memDir, "PRD.md"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(content))
}

func TestPrdCommand_RequiresPromptOrDir(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	err := runPrd(prdCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--prompt")
	// No agent invocation on a configuration error.
	assert.Zero(t, scripted.Calls())
}

func TestPrdCommand_DirMustExist(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	prdDir = "/no/such/dir"
	err := runPrd(prdCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
	assert.Zero(t, scripted.Calls())
}

func TestPrdCommand_InvokesAgent(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: "wrote PRD"})
	useScripted(t, scripted)

	prdPrompt = "a small CLI"
	require.NoError(t, runPrd(prdCmd, nil))

	require.Equal(t, 1, scripted.Calls())
	sent := scripted.Prompts()[0]
	assert.Contains(t, sent, "# sir context")
	assert.Contains(t, sent, "# Create requirements and tasks")
	assert.Contains(t, sent, "a small CLI")
}

func TestPrdCommand_BlockedOutcome(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: "what stack?\n" + prompt.TokenAsk})
	useScripted(t, scripted)

	prdPrompt = "a small CLI"
	err := runPrd(prdCmd, nil)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, ExitBlocked, ExitCode(err))
}

func TestRafaelCommand_DoneOnFirst(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: prompt.TokenDone})
	useScripted(t, scripted)

	setLoopFlag(t, "3")
	require.NoError(t, runRafael(rafaelCmd, nil))
	assert.Equal(t, 1, scripted.Calls())
}

func TestRafaelCommand_BlockedOnSecond(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(
		agent.ScriptedResult{Output: prompt.TokenOK},
		agent.ScriptedResult{Output: prompt.TokenAsk},
	)
	useScripted(t, scripted)

	setLoopFlag(t, "2")
	err := runRafael(rafaelCmd, nil)
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, 2, scripted.Calls())
}

func TestRafaelCommand_NegativeLoop(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	setLoopFlag(t, "-2")
	err := runRafael(rafaelCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
	assert.Zero(t, scripted.Calls())
}

func TestRafaelCommand_MalformedLoop(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	// Drive the cobra parse path so the non-integer rejection is the
	// one a user would hit.
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"rafael", "--loop", "abc"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
	assert.Zero(t, scripted.Calls())
}

func TestRafaelCommand_LoopFlagHelp(t *testing.T) {
	f := rafaelCmd.Flags().Lookup("loop")
	require.NotNil(t, f)

	// The -1 sentinel must not leak into help output.
	assert.Equal(t, strconv.Itoa(config.DefaultMaxIterations), f.DefValue)
	usage := rafaelCmd.Flags().FlagUsages()
	assert.Contains(t, usage, "(default "+f.DefValue+")")
	assert.NotContains(t, usage, "-1")
}

func TestRafaelCommand_ZeroLoop(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	setLoopFlag(t, "0")
	require.NoError(t, runRafael(rafaelCmd, nil))
	assert.Zero(t, scripted.Calls())
}

func TestRafaelCommand_FailureReleasesLock(t *testing.T) {
	tmpDir := setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(
		agent.ScriptedResult{Output: "", Err: &agent.InvocationError{ExitCode: 2}},
	)
	useScripted(t, scripted)

	setLoopFlag(t, "5")
	err := runRafael(rafaelCmd, nil)
	require.Error(t, err)
	assert.Equal(t, 1, scripted.Calls())

	// Lock released on the failure path.
	_, statErr := os.Stat(filepath.Join(tmpDir, "memory", "sir.lock"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRafaelCommand_HeldLockFailsFast(t *testing.T) {
	tmpDir := setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "memory"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "memory", "sir.lock"), []byte("123\n"), 0o644))

	setLoopFlag(t, "2")
	err := runRafael(rafaelCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
	assert.Zero(t, scripted.Calls())
}

func TestGuidarCommand(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: "wrote guidelines"})
	useScripted(t, scripted)

	require.NoError(t, runGuidar(guidarCmd, nil))
	require.Equal(t, 1, scripted.Calls())
	assert.Contains(t, scripted.Prompts()[0], "# Generate guidelines")
}

func TestStorytellerCommand(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: "wrote stories"})
	useScripted(t, scripted)

	storytellerPrompt = "admin persona"
	require.NoError(t, runStoryteller(storytellerCmd, nil))
	require.Equal(t, 1, scripted.Calls())
	assert.Contains(t, scripted.Prompts()[0], "admin persona")
}

func TestProjectorCommand_EmptyInbox(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted()
	useScripted(t, scripted)

	require.NoError(t, runProjector(projectorCmd, nil))
	assert.Zero(t, scripted.Calls())
}

func TestProjectorCommand_NamesNewFiles(t *testing.T) {
	tmpDir := setTestRoot(t)
	resetFlags(t)
	scripted := agent.NewScripted(agent.ScriptedResult{Output: "reconciled"})
	useScripted(t, scripted)

	inbox := filepath.Join(tmpDir, "memory", "inbox")
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inbox, "meeting-notes.md"), []byte("notes"), 0o644))

	require.NoError(t, runProjector(projectorCmd, nil))
	require.Equal(t, 1, scripted.Calls())
	assert.Contains(t, scripted.Prompts()[0], "meeting-notes.md")
}

func TestChatCommand_RequiresTerminal(t *testing.T) {
	setTestRoot(t)
	resetFlags(t)

	orig := isTerminal
	isTerminal = func(fd int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	err := runChat(chatCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}
