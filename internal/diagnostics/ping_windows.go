//go:build windows

package diagnostics

import (
	"strconv"
	"time"
)

// Windows ping exits 0 on a "Destination host unreachable" reply from a
// router, so success also needs an echo reply line carrying a TTL.
const requireTTLReply = true

func pingArgs(target string, timeout time.Duration) []string {
	ms := timeout.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), target}
}
