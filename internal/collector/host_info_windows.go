//go:build windows

package collector

import (
	"golang.org/x/sys/windows/registry"
)

const currentVersionKey = `SOFTWARE\Microsoft\Windows NT\CurrentVersion`

func getPlatformInfo() (platform, version string) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
	if err != nil {
		return "windows", ""
	}
	defer k.Close()

	if val, _, err := k.GetStringValue("ProductName"); err == nil {
		platform = val
	}
	if val, _, err := k.GetStringValue("DisplayVersion"); err == nil {
		version = val
	}

	return platform, version
}

func getKernel() (build string) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, currentVersionKey, registry.QUERY_VALUE)
	if err != nil {
		return build
	}
	defer k.Close()

	build, _, _ = k.GetStringValue("CurrentBuildNumber")

	return build
}
