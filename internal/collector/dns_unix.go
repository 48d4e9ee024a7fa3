//go:build !windows

package collector

import "github.com/nhdewitt/netscope/internal/platform"

// newSystemQuerySource only applies when ipconfig-style tooling was detected
// on a non-Windows host; otherwise the resolver config file is used.
func newSystemQuerySource(info platform.Info) DNSSource {
	resolv := ResolvConfSource{Path: info.ResolvConfPath}
	if resolv.Path == "" {
		resolv.Path = "/etc/resolv.conf"
	}
	if info.IpconfigPath == "" {
		return resolv
	}
	return chainSource{
		IpconfigSource{Run: commandRunner(info.IpconfigPath, "/all")},
		resolv,
	}
}
