//go:build darwin || freebsd || dragonfly

package diagnostics

import (
	"strconv"
	"time"
)

const requireTTLReply = false

// -t is the overall wait in seconds here; -W is per-reply in milliseconds.
func pingArgs(target string, timeout time.Duration) []string {
	return []string{"-c", "1", "-t", strconv.Itoa(waitSeconds(timeout)), target}
}
