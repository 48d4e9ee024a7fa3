//go:build !windows

package platform

import (
	"os"
	"os/exec"

	"github.com/tklauser/go-sysconf"
)

const defaultResolvConf = "/etc/resolv.conf"

func Detect() Info {
	info := baseInfo()

	info.DNSStrategy = DNSResolvConf
	info.ResolvConfPath = defaultResolvConf
	info.PingPath, _ = exec.LookPath("ping")
	info.Privileged = os.Geteuid() == 0

	if n, err := sysconf.Sysconf(sysconf.SC_OPEN_MAX); err == nil && n > 0 {
		info.OpenFilesLimit = n
	}

	return info
}
