// Package state owns the on-disk project memory: the requirements
// document, task list, progress log, guidelines, stories, inbox and
// processed markers under <root>/<memory>/.
//
// The agent reads and rewrites most of these files freely; the harness
// only guarantees they exist, appends to the progress log, and validates
// tasks.json structurally whenever it reads it itself.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andreiciceu/sir/internal/config"
)

// ErrCorruptState reports a tasks.json that fails structural validation
// after an agent edit. Wrapped errors carry the detail.
var ErrCorruptState = errors.New("corrupt state")

// Store handles state-file operations under the configured root.
type Store struct {
	cfg config.Config
}

// NewStore creates a Store for the given configuration.
func NewStore(cfg config.Config) *Store {
	return &Store{cfg: cfg}
}

// EnsureInitialized creates the memory directory and every tracked file
// in its minimal empty form. Idempotent: existing files are left alone,
// whatever their contents. Only filesystem failures error.
func (s *Store) EnsureInitialized() error {
	dirs := []string{s.cfg.MemoryPath(), s.cfg.InboxPath()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	empty := []string{
		s.cfg.PRDPath(),
		s.cfg.ProgressPath(),
		s.cfg.GuidelinesPath(),
		s.cfg.StoriesPath(),
		s.cfg.ProcessedPath(),
	}
	for _, path := range empty {
		if err := createIfAbsent(path, nil); err != nil {
			return err
		}
	}

	// tasks.json gets a valid empty task list rather than an empty file.
	seed, err := json.MarshalIndent(TaskFile{Tasks: []Task{}}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal empty task list: %w", err)
	}
	return createIfAbsent(s.cfg.TasksPath(), append(seed, '\n'))
}

// createIfAbsent writes content to path only when the file does not exist.
func createIfAbsent(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if len(content) > 0 {
		if _, err := f.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// LoadTasks reads and validates tasks.json.
//
// The file is rewritten by an external, untrusted writer, so every read
// validates structurally and fails closed with ErrCorruptState instead
// of assuming well-formedness.
func (s *Store) LoadTasks() ([]Task, error) {
	data, err := os.ReadFile(s.cfg.TasksPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}

	var file TaskFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: tasks.json is not valid JSON: %v", ErrCorruptState, err)
	}

	seen := make(map[string]bool, len(file.Tasks))
	for i, t := range file.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return nil, fmt.Errorf("%w: task %d has no id", ErrCorruptState, i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: duplicate task id %q", ErrCorruptState, t.ID)
		}
		seen[t.ID] = true
		if strings.TrimSpace(t.Title) == "" {
			return nil, fmt.Errorf("%w: task %q has no title", ErrCorruptState, t.ID)
		}
	}

	return file.Tasks, nil
}

// SaveTasks writes tasks.json. Used by tooling and tests; during a real
// run the agent owns the file.
func (s *Store) SaveTasks(tasks []Task) error {
	data, err := json.MarshalIndent(TaskFile{Tasks: tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	if err := os.WriteFile(s.cfg.TasksPath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write tasks file: %w", err)
	}
	return nil
}

// AppendProgress appends a timestamped entry to the progress log.
// The log is append-only; it is never rewritten or parsed by the harness.
func (s *Store) AppendProgress(entry string) error {
	f, err := os.OpenFile(s.cfg.ProgressPath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open progress log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.RFC3339), strings.TrimSpace(entry))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to progress log: %w", err)
	}
	return nil
}

// ListInbox returns the inbox filenames, sorted.
func (s *Store) ListInbox() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.InboxPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inbox directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// LoadProcessed returns the filenames recorded in the processed-markers
// file, one per line, blank lines ignored.
func (s *Store) LoadProcessed() (map[string]bool, error) {
	data, err := os.ReadFile(s.cfg.ProcessedPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("failed to read processed file: %w", err)
	}

	processed := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			processed[line] = true
		}
	}
	return processed, nil
}

// UnprocessedInbox returns inbox files not yet listed in the processed
// markers. Computed for display only; the actual reconciliation is the
// agent's job.
func (s *Store) UnprocessedInbox() ([]string, error) {
	names, err := s.ListInbox()
	if err != nil {
		return nil, err
	}
	processed, err := s.LoadProcessed()
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, name := range names {
		if !processed[name] {
			fresh = append(fresh, name)
		}
	}
	return fresh, nil
}

// lockName is the advisory lock file under the memory directory.
const lockName = "sir.lock"

// LockPath returns the path of the advisory lock file.
func (s *Store) LockPath() string {
	return filepath.Join(s.cfg.MemoryPath(), lockName)
}

// Acquire takes the coarse advisory lock on the state root. It guards
// against two sir invocations interleaving over the same memory
// directory; it is not a robust mutex.
func (s *Store) Acquire() error {
	f, err := os.OpenFile(s.LockPath(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("state root is locked by another sir invocation (remove %s if stale)", s.LockPath())
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "%d\n", os.Getpid())
	return nil
}

// Release drops the advisory lock. Safe to call when the lock is absent.
func (s *Store) Release() error {
	if err := os.Remove(s.LockPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
