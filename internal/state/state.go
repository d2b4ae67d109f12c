// Package state persists the outcome of each target's build step across
// sessions. Builds are keyed by the absolute target directory, so the same
// target id under two targets dirs is tracked separately.
package state

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/benchforge/internal/target"
)

// Build statuses.
const (
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInProgress  = "in_progress"
	StatusInterrupted = "interrupted"
)

// fileVersion is bumped whenever the on-disk layout changes; files written
// with another version are discarded.
const fileVersion = 2

// BuildEntry is the last known build of one target directory.
type BuildEntry struct {
	TargetID   string        `json:"target"`
	Dir        string        `json:"dir"`
	Status     string        `json:"status"`
	Command    string        `json:"command,omitempty"`
	StartedAt  time.Time     `json:"started,omitempty"`
	FinishedAt time.Time     `json:"finished,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`
	Error      string        `json:"error,omitempty"`
	SessionID  string        `json:"session_id,omitempty"`
}

// Succeeded reports whether e is a completed build of command.
func (e BuildEntry) Succeeded(command string) bool {
	return e.Status == StatusCompleted && e.Command == command
}

type stateFile struct {
	Version int          `json:"version"`
	Builds  []BuildEntry `json:"builds"`
}

// Tracker records build outcomes. Safe for concurrent use; every change is
// written through to disk with a tmp+rename.
type Tracker struct {
	mu     sync.RWMutex
	builds map[string]*BuildEntry // by Dir
	path   string
}

// DefaultPath returns the default state file path.
func DefaultPath() string {
	return filepath.Join(".benchforge", "state.json")
}

// Key returns the directory a target's builds are recorded under.
func Key(baseDir string, t target.Target) string {
	dir := target.Dir(baseDir, t)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// Load reads the state file. A missing, corrupt or outdated file yields an
// empty tracker.
func Load(path string) *Tracker {
	t := &Tracker{
		builds: make(map[string]*BuildEntry),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		slog.Warn("ignoring unreadable build state", "path", path, "error", err)
		return t
	}
	if sf.Version != fileVersion {
		slog.Info("discarding build state from another version", "path", path, "version", sf.Version)
		return t
	}
	for i := range sf.Builds {
		e := sf.Builds[i]
		if e.Dir == "" {
			continue
		}
		t.builds[e.Dir] = &e
	}
	return t
}

// RecoverInterrupted marks builds left in_progress by a killed session as
// interrupted and returns how many were changed.
func (t *Tracker) RecoverInterrupted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, e := range t.builds {
		if e.Status == StatusInProgress {
			e.Status = StatusInterrupted
			e.FinishedAt = time.Now()
			e.Error = "interrupted: session ended before the build finished"
			count++
		}
	}
	if count > 0 {
		t.save()
	}
	return count
}

// Started records that the build of tg under baseDir began.
func (t *Tracker) Started(baseDir string, tg target.Target, sessionID string) {
	key := Key(baseDir, tg)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.builds[key] = &BuildEntry{
		TargetID:  tg.ID,
		Dir:       key,
		Status:    StatusInProgress,
		Command:   tg.Build,
		StartedAt: time.Now(),
		SessionID: sessionID,
	}
	t.save()
}

// Succeeded records a successful build.
func (t *Tracker) Succeeded(baseDir string, tg target.Target, d time.Duration) {
	t.finish(baseDir, tg, StatusCompleted, "", d)
}

// Failed records a failed build.
func (t *Tracker) Failed(baseDir string, tg target.Target, errMsg string, d time.Duration) {
	t.finish(baseDir, tg, StatusFailed, errMsg, d)
}

func (t *Tracker) finish(baseDir string, tg target.Target, status, errMsg string, d time.Duration) {
	key := Key(baseDir, tg)
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.builds[key]
	if e == nil {
		// No start was seen; the command is the only thing known.
		e = &BuildEntry{TargetID: tg.ID, Dir: key, Command: tg.Build, StartedAt: now.Add(-d)}
		t.builds[key] = e
	}
	e.Status = status
	e.FinishedAt = now
	e.Duration = d
	e.Error = errMsg
	t.save()
}

// Lookup returns a copy of the entry for tg under baseDir, or nil.
func (t *Tracker) Lookup(baseDir string, tg target.Target) *BuildEntry {
	key := Key(baseDir, tg)
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.builds[key]; ok {
		cpy := *e
		return &cpy
	}
	return nil
}

// Entries returns copies of the entries whose directory lies under root,
// or of every entry when root is empty, ordered by target id then dir.
func (t *Tracker) Entries(root string) []BuildEntry {
	t.mu.RLock()
	out := make([]BuildEntry, 0, len(t.builds))
	for _, e := range t.builds {
		if root == "" || within(root, e.Dir) {
			out = append(out, *e)
		}
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].Dir < out[j].Dir
	})
	return out
}

// Forget drops the entries under root (every entry when root is empty) and
// returns how many were removed.
func (t *Tracker) Forget(root string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for key := range t.builds {
		if root == "" || within(root, key) {
			delete(t.builds, key)
			n++
		}
	}
	if len(t.builds) == 0 {
		_ = os.Remove(t.path)
	} else if n > 0 {
		t.save()
	}
	return n
}

// within reports whether dir is root or lies below it.
func within(root, dir string) bool {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// save writes the state file; t.mu must be held. Failures are logged, since
// build tracking never fails a session.
func (t *Tracker) save() {
	sf := stateFile{Version: fileVersion, Builds: make([]BuildEntry, 0, len(t.builds))}
	for _, e := range t.builds {
		sf.Builds = append(sf.Builds, *e)
	}
	sort.Slice(sf.Builds, func(i, j int) bool { return sf.Builds[i].Dir < sf.Builds[j].Dir })

	if err := writeAtomic(t.path, sf); err != nil {
		slog.Warn("saving build state", "path", t.path, "error", err)
	}
}

func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
