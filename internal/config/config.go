// Package config builds the immutable configuration for a sir run.
//
// Configuration is resolved once at process start from environment
// variables (optionally seeded from .sir/sir.env) plus an optional
// .sir/config.yaml overlay, and passed by value into every component.
// No component reads ambient environment state after Load returns.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for the loop and agent settings.
const (
	DefaultMaxIterations = 10
	DefaultAgentTimeout  = 30 * time.Minute
	DefaultTone          = "Be terse. No preamble, no summaries of what you are about to do."
)

// Config holds all settings for a sir invocation.
type Config struct {
	// Root is the project/state root directory.
	Root string

	// MemoryDir is the state subdirectory name under Root.
	MemoryDir string

	// Tracked state file names, relative to the memory directory.
	PRDFile        string
	TasksFile      string
	ProgressFile   string
	GuidelinesFile string
	StoriesFile    string
	InboxDir       string
	ProcessedFile  string

	// AgentCmd is the external agent executable.
	AgentCmd string
	// AgentArgs are the default arguments passed to the agent.
	AgentArgs []string
	// ChatCmd is the executable for interactive mode.
	ChatCmd string

	// Tone is the style directive injected into every prompt.
	Tone string
	// AllowQuestions controls whether the agent may ask for clarification.
	AllowQuestions bool

	// MaxIterations is the default rafael iteration budget.
	MaxIterations int
	// AgentTimeout bounds a single agent invocation. Zero disables.
	AgentTimeout time.Duration
}

// fileOverlay mirrors the optional .sir/config.yaml file.
type fileOverlay struct {
	Loop struct {
		MaxIterations  *int  `yaml:"max_iterations"`
		AllowQuestions *bool `yaml:"allow_questions"`
	} `yaml:"loop"`
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Load resolves the configuration from the environment.
//
// Values in .sir/sir.env (if present under the resolved root) act as
// defaults; real environment variables win. The .sir/config.yaml overlay
// is applied last and validated.
func Load() (Config, error) {
	root := getEnv("SIR_ROOT", ".")

	// godotenv.Load never overrides variables already set in the
	// environment, which gives the precedence we want.
	envPath := filepath.Join(root, ".sir", "sir.env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return Config{}, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	cfg := Config{
		Root:           root,
		MemoryDir:      getEnv("SIR_MEMORY_DIR", "memory"),
		PRDFile:        getEnv("SIR_PRD_FILE", "PRD.md"),
		TasksFile:      getEnv("SIR_TASKS_FILE", "tasks.json"),
		ProgressFile:   getEnv("SIR_PROGRESS_FILE", "progress.txt"),
		GuidelinesFile: getEnv("SIR_GUIDELINES_FILE", "GUIDELINES.md"),
		StoriesFile:    getEnv("SIR_STORIES_FILE", "stories.md"),
		InboxDir:       getEnv("SIR_INBOX_DIR", "inbox"),
		ProcessedFile:  getEnv("SIR_PROCESSED_FILE", "processed.txt"),
		AgentCmd:       getEnv("SIR_AGENT_CMD", "claude"),
		AgentArgs:      strings.Fields(getEnv("SIR_AGENT_ARGS", "-p --dangerously-skip-permissions")),
		ChatCmd:        getEnv("SIR_CHAT_CMD", "claude"),
		Tone:           getEnv("SIR_TONE", DefaultTone),
		AllowQuestions: getEnvBool("SIR_ALLOW_QUESTIONS", true),
		MaxIterations:  DefaultMaxIterations,
	}

	timeout, err := getEnvDuration("SIR_AGENT_TIMEOUT", DefaultAgentTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AgentTimeout = timeout

	if err := applyOverlay(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyOverlay merges .sir/config.yaml into cfg if the file exists.
func applyOverlay(cfg *Config) error {
	overlayPath := filepath.Join(cfg.Root, ".sir", "config.yaml")
	data, err := os.ReadFile(overlayPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse %s: %w", overlayPath, err)
	}

	if overlay.Loop.MaxIterations != nil {
		cfg.MaxIterations = *overlay.Loop.MaxIterations
	}
	if overlay.Loop.AllowQuestions != nil {
		cfg.AllowQuestions = *overlay.Loop.AllowQuestions
	}
	return nil
}

// Validate checks that all config values are usable.
func Validate(cfg Config) error {
	if cfg.Root == "" {
		return ValidationError{Field: "root", Message: "must not be empty"}
	}
	if cfg.MemoryDir == "" {
		return ValidationError{Field: "memory_dir", Message: "must not be empty"}
	}
	if cfg.AgentCmd == "" {
		return ValidationError{Field: "agent_cmd", Message: "must not be empty"}
	}
	if cfg.MaxIterations < 0 {
		return ValidationError{Field: "loop.max_iterations", Message: "must be non-negative"}
	}
	if cfg.AgentTimeout < 0 {
		return ValidationError{Field: "agent_timeout", Message: "must be non-negative"}
	}
	return nil
}

// MemoryPath returns the absolute-ish path of the memory directory.
func (c Config) MemoryPath() string {
	return filepath.Join(c.Root, c.MemoryDir)
}

// PRDPath returns the path of the requirements document.
func (c Config) PRDPath() string { return filepath.Join(c.MemoryPath(), c.PRDFile) }

// TasksPath returns the path of the task list.
func (c Config) TasksPath() string { return filepath.Join(c.MemoryPath(), c.TasksFile) }

// ProgressPath returns the path of the progress log.
func (c Config) ProgressPath() string { return filepath.Join(c.MemoryPath(), c.ProgressFile) }

// GuidelinesPath returns the path of the guidelines document.
func (c Config) GuidelinesPath() string { return filepath.Join(c.MemoryPath(), c.GuidelinesFile) }

// StoriesPath returns the path of the stories document.
func (c Config) StoriesPath() string { return filepath.Join(c.MemoryPath(), c.StoriesFile) }

// InboxPath returns the path of the inbox directory.
func (c Config) InboxPath() string { return filepath.Join(c.MemoryPath(), c.InboxDir) }

// ProcessedPath returns the path of the processed-markers file.
func (c Config) ProcessedPath() string { return filepath.Join(c.MemoryPath(), c.ProcessedFile) }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, ValidationError{Field: key, Message: fmt.Sprintf("invalid duration %q", value)}
	}
	return parsed, nil
}
