package agent

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreiciceu/sir/internal/config"
)

// shAgent builds a config whose "agent" is a shell one-liner.
func shAgent(t *testing.T, script string) config.Config {
	t.Helper()
	return config.Config{
		Root:      t.TempDir(),
		MemoryDir: "memory",
		AgentCmd:  "sh",
		AgentArgs: []string{"-c", script},
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, Check(config.Config{AgentCmd: "sh"}))

	err := Check(config.Config{AgentCmd: "definitely-not-a-real-binary-7f3a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAgentUnavailable)
}

func TestRunner_RelaysPromptViaStdin(t *testing.T) {
	t.Parallel()

	r := NewRunner(shAgent(t, "cat"))
	var out bytes.Buffer
	r.Stdout = &out
	r.Stderr = &out

	output, err := r.Invoke(context.Background(), "hello agent")
	require.NoError(t, err)

	assert.Equal(t, "hello agent", output)
	assert.Equal(t, "hello agent", out.String())
}

func TestRunner_CapturesCombinedOutput(t *testing.T) {
	t.Parallel()

	r := NewRunner(shAgent(t, "echo to-stdout; echo to-stderr >&2"))
	var out, errOut bytes.Buffer
	r.Stdout = &out
	r.Stderr = &errOut

	output, err := r.Invoke(context.Background(), "")
	require.NoError(t, err)

	assert.Contains(t, output, "to-stdout")
	assert.Contains(t, output, "to-stderr")
	assert.Contains(t, out.String(), "to-stdout")
	assert.Contains(t, errOut.String(), "to-stderr")
}

func TestRunner_NonZeroExit(t *testing.T) {
	t.Parallel()

	r := NewRunner(shAgent(t, "echo partial; exit 7"))
	var out bytes.Buffer
	r.Stdout = &out
	r.Stderr = &out

	output, err := r.Invoke(context.Background(), "")
	require.Error(t, err)

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, 7, invErr.ExitCode)
	// Partial output survives the failure.
	assert.Contains(t, output, "partial")
	assert.Contains(t, invErr.Output, "partial")
}

func TestRunner_Timeout(t *testing.T) {
	t.Parallel()

	cfg := shAgent(t, "sleep 5")
	cfg.AgentTimeout = 50 * time.Millisecond

	r := NewRunner(cfg)
	var out bytes.Buffer
	r.Stdout = &out
	r.Stderr = &out

	_, err := r.Invoke(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScripted_PlaysBackResults(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := NewScripted(
		ScriptedResult{Output: "first"},
		ScriptedResult{Output: "second", Err: boom},
	)

	out, err := s.Invoke(context.Background(), "prompt one")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	out, err = s.Invoke(context.Background(), "prompt two")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "second", out)

	// Past the end of the script, the last result repeats.
	out, err = s.Invoke(context.Background(), "prompt three")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "second", out)

	assert.Equal(t, 3, s.Calls())
	assert.Equal(t, []string{"prompt one", "prompt two", "prompt three"}, s.Prompts())
}

func TestScripted_Empty(t *testing.T) {
	t.Parallel()

	s := NewScripted()
	out, err := s.Invoke(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 1, s.Calls())
}
