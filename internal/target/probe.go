package target

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Skip records a target excluded by probing.
type Skip struct {
	Target Target
	Reason string
}

// ProbeResult partitions a registry into available and skipped targets,
// both in registry order.
type ProbeResult struct {
	Available []Target
	Skipped   []Skip
}

// Dir returns the working directory of t under baseDir.
func Dir(baseDir string, t Target) string {
	return filepath.Join(baseDir, t.DirName())
}

// Probe keeps the targets whose directory exists under baseDir.
// A missing directory is an expected condition: it is logged and the
// target is skipped. Probe itself never fails.
func Probe(logger *slog.Logger, baseDir string, reg *Registry) ProbeResult {
	if logger == nil {
		logger = slog.Default()
	}

	var res ProbeResult
	for _, t := range reg.List() {
		dir := Dir(baseDir, t)
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			res.Skipped = append(res.Skipped, Skip{Target: t, Reason: "directory not found"})
			logger.Info("target directory not found, skipping", "target", t.ID, "dir", dir)
		case !info.IsDir():
			res.Skipped = append(res.Skipped, Skip{Target: t, Reason: fmt.Sprintf("%s is not a directory", dir)})
			logger.Info("target path is not a directory, skipping", "target", t.ID, "dir", dir)
		default:
			res.Available = append(res.Available, t)
		}
	}
	return res
}
