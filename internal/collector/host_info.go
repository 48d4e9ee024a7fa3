package collector

import (
	"runtime"
	"strings"
)

// OSDescriptor describes the running operating system, for example
// "linux ubuntu 22.04 (kernel 6.5.0)".
func OSDescriptor() string {
	platform, version := getPlatformInfo()
	return formatOSDescriptor(runtime.GOOS, platform, version, getKernel())
}

func formatOSDescriptor(goos, platform, version, kernel string) string {
	parts := []string{goos}
	if platform != "" && !strings.EqualFold(platform, goos) {
		parts = append(parts, platform)
	}
	if version != "" {
		parts = append(parts, version)
	}

	desc := strings.Join(parts, " ")
	if kernel != "" {
		desc += " (kernel " + kernel + ")"
	}
	return desc
}
