//go:build windows

package collector

import (
	"context"
	"fmt"

	"github.com/yusufpapurcu/wmi"

	"github.com/nhdewitt/netscope/internal/platform"
)

// Win32_NetworkAdapterConfiguration maps to the WMI class.
type Win32_NetworkAdapterConfiguration struct {
	Description          string
	IPEnabled            bool
	DNSServerSearchOrder []string
}

// wmiSource asks WMI for the DNS search order of every IP-enabled adapter.
type wmiSource struct{}

func (wmiSource) Servers(ctx context.Context) ([]string, error) {
	var dst []Win32_NetworkAdapterConfiguration

	q := wmi.CreateQuery(&dst, "WHERE IPEnabled = TRUE")
	if err := wmi.Query(q, &dst); err != nil {
		return nil, fmt.Errorf("wmi query: %w", err)
	}

	var servers []string
	for _, adapter := range dst {
		servers = append(servers, adapter.DNSServerSearchOrder...)
	}

	return cleanServers(servers), nil
}

func newSystemQuerySource(info platform.Info) DNSSource {
	return chainSource{
		wmiSource{},
		IpconfigSource{Run: commandRunner(info.IpconfigPath, "/all")},
	}
}
