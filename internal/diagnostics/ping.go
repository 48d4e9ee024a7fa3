package diagnostics

import (
	"strings"
	"time"
)

// waitSeconds rounds timeout up to whole seconds, as ping's -W/-t expect.
func waitSeconds(timeout time.Duration) int {
	s := int((timeout + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

// hasTTLReply reports whether ping output contains an echo reply line.
func hasTTLReply(output string) bool {
	return strings.Contains(strings.ToUpper(output), "TTL=")
}
