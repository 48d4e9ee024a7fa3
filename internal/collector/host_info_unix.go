//go:build !windows

package collector

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

func getPlatformInfo() (string, string) {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return runtime.GOOS, ""
	}
	defer f.Close()

	return getPlatformInfoFrom(f, runtime.GOOS)
}

// getPlatformInfoFrom reads ID and VERSION_ID from an os-release file,
// falling back to def when no ID is present.
func getPlatformInfoFrom(r io.Reader, def string) (platform, version string) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		if v, ok := strings.CutPrefix(line, "ID="); ok {
			platform = strings.TrimSpace(strings.Trim(v, `"`))
		} else if v, ok := strings.CutPrefix(line, "VERSION_ID="); ok {
			version = strings.TrimSpace(strings.Trim(strings.TrimSpace(v), `"`))
		}
	}

	if platform == "" {
		platform = def
	}

	return platform, version
}

func getKernel() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return ""
	}

	return charsToString(uname.Release[:])
}

// charsToString converts a NUL-terminated C char buffer to a Go string.
// It accepts both signed and unsigned byte representations.
func charsToString[T ~int8 | ~uint8](ca []T) string {
	buf := make([]byte, 0, len(ca))

	for _, c := range ca {
		if c == 0 {
			break
		}
		buf = append(buf, byte(c))
	}

	return string(buf)
}
