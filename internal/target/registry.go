package target

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ppiankov/benchforge/internal/style"
)

// Registry is an ordered, read-only catalog of targets. Order only drives
// display numbering and tie-breaking, never execution semantics.
type Registry struct {
	targets []Target
	index   map[string]int
}

// NewRegistry validates targets and returns a registry preserving their order.
func NewRegistry(targets []Target) (*Registry, error) {
	r := &Registry{
		targets: make([]Target, 0, len(targets)),
		index:   make(map[string]int, len(targets)),
	}
	for _, t := range targets {
		if err := validate(t); err != nil {
			return nil, err
		}
		if _, dup := r.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate target id: %q", t.ID)
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		r.index[t.ID] = len(r.targets)
		r.targets = append(r.targets, t)
	}
	return r, nil
}

func validate(t Target) error {
	if t.ID == "" {
		return fmt.Errorf("target with empty id")
	}
	if strings.ContainsAny(t.ID, `/\`) || t.ID == "." || t.ID == ".." {
		return fmt.Errorf("target %q: id must be a plain directory name", t.ID)
	}
	if strings.TrimSpace(t.Command) == "" {
		return fmt.Errorf("target %q has empty command", t.ID)
	}
	if t.Color != "" && !style.Known(t.Color) {
		return fmt.Errorf("target %q: unknown color %q", t.ID, t.Color)
	}
	return nil
}

// List returns a copy of all targets in registry order.
func (r *Registry) List() []Target {
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Get returns the target with the given id.
func (r *Registry) Get(id string) (Target, bool) {
	i, ok := r.index[id]
	if !ok {
		return Target{}, false
	}
	return r.targets[i], true
}

// IDs returns target ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.targets))
	for i, t := range r.targets {
		ids[i] = t.ID
	}
	return ids
}

// Len returns the number of registered targets.
func (r *Registry) Len() int { return len(r.targets) }

// Compiled filters targets down to those requiring a build step.
func Compiled(targets []Target) []Target {
	var out []Target
	for _, t := range targets {
		if t.Compiled {
			out = append(out, t)
		}
	}
	return out
}

// Names returns the display names of targets.
func Names(targets []Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// Default returns the built-in catalog: compiled languages first
// (C++, Rust, Go, C#), then interpreted ones (Node.js, Python, Ruby).
func Default() []Target {
	exe := ""
	if runtime.GOOS == "windows" {
		exe = ".exe"
	}
	return []Target{
		{
			ID:       "cpp",
			Name:     "C++",
			Command:  "." + string(filepath.Separator) + "benchmark" + exe,
			Build:    "g++ -std=c++17 -O2 -o benchmark" + exe + " benchmark.cpp cpu_benchmark.cpp io_benchmark.cpp",
			Compiled: true,
			Color:    "white",
		},
		{
			ID:       "rust",
			Name:     "Rust",
			Command:  "cargo run --release --",
			Build:    "cargo build --release",
			Compiled: true,
			Color:    "red",
		},
		{
			ID:       "go",
			Name:     "Go",
			Command:  "." + string(filepath.Separator) + "go-benchmark" + exe,
			Build:    "go build -o go-benchmark" + exe + " .",
			Compiled: true,
			Color:    "cyan",
		},
		{
			ID:       "csharp",
			Name:     "C#",
			Command:  "dotnet run -c Release --",
			Build:    "dotnet build -c Release",
			Compiled: true,
			Color:    "blue",
		},
		{
			ID:      "node",
			Name:    "Node.js",
			Command: "node index.js",
			Color:   "green",
		},
		{
			ID:      "python",
			Name:    "Python",
			Command: "python3 benchmark.py",
			Color:   "yellow",
		},
		{
			ID:      "ruby",
			Name:    "Ruby",
			Command: "ruby benchmark.rb",
			Color:   "magenta",
		},
	}
}
