//go:build !unix

package knip

import "os/exec"

// killGroup keeps the default cancellation, which kills the direct child.
// WaitDelay still releases Run when grandchildren hold the pipes.
func killGroup(*exec.Cmd) {}
