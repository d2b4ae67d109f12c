//go:build !windows

package runner

import (
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestSetupProcessGroup_Attributes(t *testing.T) {
	cmd := exec.Command("true")
	setupProcessGroup(cmd)

	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("expected Setpgid")
	}
	if cmd.Cancel == nil {
		t.Fatal("expected Cancel override")
	}
	if err := cmd.Cancel(); err != nil {
		t.Fatalf("Cancel before Start: %v", err)
	}
}

func TestSetupProcessGroup_KillsGrandchildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 60 & sleep 60")
	setupProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid

	cancel()
	_ = cmd.Wait()
	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(-pid, 0); err == nil {
		t.Errorf("process group %d survived cancellation", pid)
	}
}
