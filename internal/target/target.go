// Package target provides the benchmark target catalog, command
// construction and on-disk availability probing.
package target

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Task count bounds passed to every target invocation.
const (
	MinTasks     = 1
	MaxTasks     = 100
	DefaultTasks = 10
)

// ArgsPlaceholder marks where mode and task-count arguments are spliced
// into a run command template. Templates without it get the arguments
// appended.
const ArgsPlaceholder = "{args}"

// Mode is the workload category requested of a target.
type Mode string

const (
	ModeCPU     Mode = "cpu"
	ModeIO      Mode = "io"
	ModeHeavyIO Mode = "heavy-io"
)

// AllModes returns every mode in menu order.
func AllModes() []Mode {
	return []Mode{ModeCPU, ModeIO, ModeHeavyIO}
}

// Token returns the positional argument passed to the target for this mode.
// cpu is the target's default and has no token.
func (m Mode) Token() string {
	switch m {
	case ModeIO:
		return "io"
	case ModeHeavyIO:
		return "heavy"
	default:
		return ""
	}
}

func (m Mode) String() string { return string(m) }

// Title returns the upper-case label used in headers ("CPU", "HEAVY-IO").
func (m Mode) Title() string { return cases.Upper(language.Und).String(string(m)) }

// ParseMode resolves a mode name. "heavy" is accepted as an alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu":
		return ModeCPU, nil
	case "io":
		return ModeIO, nil
	case "heavy-io", "heavy":
		return ModeHeavyIO, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want cpu, io or heavy-io)", s)
	}
}

// Target describes one benchmark implementation under comparison.
type Target struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Command  string `json:"command"`
	Build    string `json:"build,omitempty"`
	Compiled bool   `json:"compiled"`
	Color    string `json:"color,omitempty"`
	Dir      string `json:"dir,omitempty"` // relative to the targets dir; defaults to ID
}

// DirName returns the directory name of the target under the targets dir.
func (t Target) DirName() string {
	if t.Dir != "" {
		return t.Dir
	}
	return t.ID
}

// HasBuild reports whether the target needs a build step.
func (t Target) HasBuild() bool {
	return strings.TrimSpace(t.Build) != ""
}

// Args returns the positional arguments for a run: the mode token (omitted
// for cpu) followed by the task count.
func Args(mode Mode, taskCount int) []string {
	args := make([]string, 0, 2)
	if tok := mode.Token(); tok != "" {
		args = append(args, tok)
	}
	return append(args, strconv.Itoa(taskCount))
}

// RunCommand splices the run arguments into the command template.
func (t Target) RunCommand(mode Mode, taskCount int) string {
	args := strings.Join(Args(mode, taskCount), " ")
	if strings.Contains(t.Command, ArgsPlaceholder) {
		return strings.ReplaceAll(t.Command, ArgsPlaceholder, args)
	}
	return strings.TrimSpace(t.Command) + " " + args
}

// ClampTaskCount bounds n to [MinTasks, MaxTasks].
func ClampTaskCount(n int) int {
	return max(MinTasks, min(MaxTasks, n))
}

// ParseTaskCount parses user input into a task count. Empty or non-numeric
// input yields DefaultTasks; numbers are clamped.
func ParseTaskCount(s string) int {
	return ParseTaskCountOr(s, DefaultTasks)
}

// ParseTaskCountOr is ParseTaskCount with a caller-chosen default.
func ParseTaskCountOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return ClampTaskCount(n)
}
