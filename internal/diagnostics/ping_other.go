//go:build !linux && !windows && !darwin && !freebsd && !dragonfly

package diagnostics

import (
	"strconv"
	"time"
)

const requireTTLReply = false

// OpenBSD and NetBSD take the wait in seconds as -w.
func pingArgs(target string, timeout time.Duration) []string {
	return []string{"-c", "1", "-w", strconv.Itoa(waitSeconds(timeout)), target}
}
