package platform

import "runtime"

// DNSStrategy selects how configured DNS servers are discovered.
type DNSStrategy int

const (
	DNSResolvConf DNSStrategy = iota // resolver config file
	DNSSystemQuery                   // WMI, falling back to ipconfig output
)

type Info struct {
	OS   string
	Arch string

	// DNS discovery
	DNSStrategy    DNSStrategy
	ResolvConfPath string
	IpconfigPath   string

	// Tools
	PingPath string

	// Limits
	NumCPU         int
	OpenFilesLimit int64 // 0 when unknown
	Privileged     bool
}

func baseInfo() Info {
	return Info{
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
		NumCPU: runtime.NumCPU(),
	}
}
