package runner

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// newLogWriter opens dir/name for writing. An empty dir, or any error
// creating the file, yields io.Discard: a missing log never fails a run.
func newLogWriter(dir, name string) io.Writer {
	if dir == "" {
		return io.Discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("cannot create log directory", "dir", dir, "error", err)
		return io.Discard
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("cannot create log file", "path", path, "error", err)
		return io.Discard
	}
	return f
}

func closeLogWriter(w io.Writer) {
	if f, ok := w.(*os.File); ok {
		_ = f.Close()
	}
}
