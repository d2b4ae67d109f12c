package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the settings file looked up in the working directory.
const DefaultFile = ".benchforge.yml"

// ErrInvalidSettings marks a settings file that fails schema validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	TargetsDir     string         `yaml:"targets_dir"`
	TaskCount      int            `yaml:"task_count"`
	SettleDelay    *time.Duration `yaml:"settle_delay"` // nil means the built-in default
	MaxRuntime     time.Duration  `yaml:"max_runtime"`
	IdleTimeout    time.Duration  `yaml:"idle_timeout"`
	ParallelBuilds int            `yaml:"parallel_builds"`
	TUI            string         `yaml:"tui"`
	History        *bool          `yaml:"history"`
	MetricsFile    string         `yaml:"metrics_file"`

	// Entries override catalog targets by id or add new ones.
	Targets []TargetOverride `yaml:"targets,omitempty"`
}

// TargetOverride changes or adds one registry entry. Empty fields keep the
// catalog value.
type TargetOverride struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name,omitempty"`
	Command  string `yaml:"command,omitempty"`
	Build    string `yaml:"build,omitempty"`
	Compiled *bool  `yaml:"compiled,omitempty"`
	Color    string `yaml:"color,omitempty"`
	Dir      string `yaml:"dir,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// HistoryEnabled reports whether runs should be recorded; on unless the
// file says otherwise.
func (s *Settings) HistoryEnabled() bool {
	return s.History == nil || *s.History
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &s, nil
}
