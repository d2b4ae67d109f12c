package runner

import (
	"bytes"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

func TestIdleTimeoutReader_Disabled(t *testing.T) {
	itr := newIdleTimeoutReader(bytes.NewBufferString("cpu 10"), 0, nil)
	defer itr.Stop()

	p := make([]byte, 6)
	n, err := itr.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 bytes, got %d", n)
	}
	if itr.Idled() {
		t.Fatal("watchdog must stay quiet when disabled")
	}
}

func TestIdleTimeoutReader_ProgressKeepsAlive(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	var cancelled atomic.Bool
	itr := newIdleTimeoutReader(pr, 200*time.Millisecond, func() { cancelled.Store(true) })
	defer itr.Stop()

	go func() {
		for range 4 {
			time.Sleep(80 * time.Millisecond)
			_, _ = pw.Write([]byte("."))
		}
	}()

	p := make([]byte, 1)
	for i := range 4 {
		if _, err := itr.Read(p); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}

	if itr.Idled() || cancelled.Load() {
		t.Fatal("watchdog fired while output was flowing")
	}
}

func TestIdleTimeoutReader_SilentProcess(t *testing.T) {
	pr, pw := io.Pipe()

	var cancelled atomic.Bool
	itr := newIdleTimeoutReader(pr, 80*time.Millisecond, func() {
		cancelled.Store(true)
		_ = pw.Close()
	})
	defer itr.Stop()

	p := make([]byte, 1)
	if _, err := itr.Read(p); err == nil {
		t.Fatal("expected EOF after watchdog closed the pipe")
	}
	if !itr.Idled() {
		t.Fatal("expected Idled after silence")
	}
	if !cancelled.Load() {
		t.Fatal("expected cancel to be called")
	}
}

func TestIdleTimeoutReader_Stop(t *testing.T) {
	var cancelled atomic.Bool
	itr := newIdleTimeoutReader(bytes.NewBufferString("ok"), 40*time.Millisecond, func() { cancelled.Store(true) })

	_, _ = itr.Read(make([]byte, 2))
	itr.Stop()
	time.Sleep(80 * time.Millisecond)

	if cancelled.Load() || itr.Idled() {
		t.Fatal("watchdog fired after Stop")
	}
}
