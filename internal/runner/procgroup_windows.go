//go:build windows

package runner

import "os/exec"

// setupProcessGroup leaves the default Cancel (Process.Kill) in place;
// cmd.WaitDelay covers children that keep the output pipes open.
func setupProcessGroup(cmd *exec.Cmd) {}
