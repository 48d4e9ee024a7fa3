//go:build linux

package diagnostics

import (
	"strconv"
	"time"
)

const requireTTLReply = false

// pingArgs sends one request and waits at most timeout (whole seconds, min 1).
func pingArgs(target string, timeout time.Duration) []string {
	return []string{"-c", "1", "-W", strconv.Itoa(waitSeconds(timeout)), target}
}
