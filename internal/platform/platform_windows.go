//go:build windows

package platform

import (
	"os/exec"

	"golang.org/x/sys/windows"
)

func Detect() Info {
	info := baseInfo()

	info.DNSStrategy = DNSSystemQuery
	info.IpconfigPath, _ = exec.LookPath("ipconfig")
	info.PingPath, _ = exec.LookPath("ping")
	info.Privileged = isWindowsAdmin()

	return info
}

func isWindowsAdmin() bool {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	adminSID, err := windows.CreateWellKnownSid(windows.WinBuiltinAdministratorsSid)
	if err != nil {
		return false
	}

	isMember, err := token.IsMember(adminSID)
	return err == nil && isMember
}
