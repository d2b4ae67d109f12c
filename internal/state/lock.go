package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

const lockFileName = ".benchforge.lock"

// LockInfo describes the session holding a targets directory.
type LockInfo struct {
	PID       int       `json:"pid"`
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

// Acquire creates a lock file in dir so that only one session builds or
// benchmarks its targets at a time. A lock whose owning process is gone is
// reclaimed.
func Acquire(dir, sessionID, command string) error {
	lockPath := filepath.Join(dir, lockFileName)

	info := LockInfo{
		PID:       os.Getpid(),
		SessionID: sessionID,
		Command:   command,
		StartedAt: time.Now(),
	}

	err := writeLock(lockPath, &info)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create lock %s: %w", lockPath, err)
	}

	existing, readErr := ReadLock(dir)
	if readErr != nil {
		return fmt.Errorf("%s is locked (could not read lock: %v)", dir, readErr)
	}
	if isProcessAlive(existing.PID) {
		return fmt.Errorf("%s is in use by benchforge %s (PID %d) since %s",
			dir, existing.Command, existing.PID, existing.StartedAt.Format(time.RFC3339))
	}

	slog.Warn("reclaiming stale lock", "dir", dir, "stale_pid", existing.PID, "session", existing.SessionID)
	if err := os.Remove(lockPath); err != nil {
		return fmt.Errorf("remove stale lock: %w", err)
	}
	if err := writeLock(lockPath, &info); err != nil {
		return fmt.Errorf("acquire after stale removal: %w", err)
	}
	return nil
}

// Release removes the lock file from dir. It is idempotent.
func Release(dir string) {
	lockPath := filepath.Join(dir, lockFileName)
	if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to release lock", "path", lockPath, "error", err)
	}
}

// ReadLock reads the lock file from dir.
func ReadLock(dir string) (*LockInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock: %w", err)
	}
	return &info, nil
}

// writeLock creates the lock file with O_EXCL.
func writeLock(path string, info *LockInfo) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	encErr := json.NewEncoder(f).Encode(info)
	closeErr := f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

func isProcessAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 probes for existence
	return proc.Signal(syscall.Signal(0)) == nil
}
