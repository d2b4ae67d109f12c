package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/benchforge/internal/target"
)

// BuildRegistry applies the settings' target overrides to the built-in
// catalog and returns the resulting registry. Overrides of known ids merge
// field by field, unknown ids are appended, disabled entries are removed.
func BuildRegistry(s *Settings) (*target.Registry, error) {
	targets := target.Default()
	if s == nil {
		return target.NewRegistry(targets)
	}

	pos := make(map[string]int, len(targets))
	for i, t := range targets {
		pos[t.ID] = i
	}
	disabled := make(map[string]bool)

	for _, o := range s.Targets {
		if o.ID == "" {
			return nil, fmt.Errorf("target override with empty id")
		}
		if o.Disabled {
			disabled[o.ID] = true
			continue
		}
		if i, ok := pos[o.ID]; ok {
			targets[i] = merge(targets[i], o)
			continue
		}
		if o.Command == "" {
			return nil, fmt.Errorf("target %q: command is required for a new target", o.ID)
		}
		pos[o.ID] = len(targets)
		targets = append(targets, merge(target.Target{ID: o.ID}, o))
	}

	kept := targets[:0]
	for _, t := range targets {
		if !disabled[t.ID] {
			kept = append(kept, t)
		}
	}

	reg, err := target.NewRegistry(kept)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return reg, nil
}

func merge(t target.Target, o TargetOverride) target.Target {
	if o.Name != "" {
		t.Name = o.Name
	}
	if o.Command != "" {
		t.Command = o.Command
	}
	if o.Build != "" {
		t.Build = o.Build
	}
	if o.Compiled != nil {
		t.Compiled = *o.Compiled
	} else if o.Build != "" {
		t.Compiled = true
	}
	if o.Color != "" {
		t.Color = o.Color
	}
	if o.Dir != "" {
		t.Dir = o.Dir
	}
	return t
}

// ResolveDir expands a leading ~ and makes dir absolute relative to the
// working directory. An empty dir resolves to the working directory.
func ResolveDir(dir, home string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}
