package state

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/benchforge/internal/target"
)

// SkippedBuild records why a target's build step was not repeated.
type SkippedBuild struct {
	ID     string
	Reason string
}

// outputDirs hold build products or dependencies and are ignored when
// looking for source changes.
var outputDirs = map[string]bool{
	".git":         true,
	"target":       true,
	"bin":          true,
	"obj":          true,
	"build":        true,
	"node_modules": true,
}

// FilterBuilds splits targets into those that need a build and those whose
// last build in the same directory, with the same command, completed after
// every file there was modified. Targets without a build step are always
// kept so they show up downstream.
func FilterBuilds(targets []target.Target, tracker *Tracker, baseDir string) ([]target.Target, []SkippedBuild) {
	var keep []target.Target
	var skipped []SkippedBuild

	for _, t := range targets {
		entry := tracker.Lookup(baseDir, t)
		if !t.HasBuild() || entry == nil || !entry.Succeeded(t.Build) {
			keep = append(keep, t)
			continue
		}

		newest, err := newestModTime(entry.Dir)
		if err != nil || newest.After(entry.FinishedAt) {
			keep = append(keep, t)
			continue
		}

		reason := "unchanged since build " + humanize.Time(entry.FinishedAt)
		skipped = append(skipped, SkippedBuild{ID: t.ID, Reason: reason})
		slog.Info("skipping build", "target", t.ID, "dir", entry.Dir, "reason", reason)
	}

	return keep, skipped
}

func newestModTime(dir string) (time.Time, error) {
	var newest time.Time
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && outputDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest, err
}
