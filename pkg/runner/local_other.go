//go:build !unix

package runner

import "os/exec"

func setCancel(*exec.Cmd, bool) {}
