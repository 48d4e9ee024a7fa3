package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"os/exec"
	"strings"

	"github.com/miekg/dns"

	"github.com/nhdewitt/netscope/internal/platform"
)

// DNSSource reports the DNS servers configured on this host.
type DNSSource interface {
	Servers(ctx context.Context) ([]string, error)
}

// NewDNSSource picks the discovery strategy for the detected platform.
func NewDNSSource(info platform.Info) DNSSource {
	switch info.DNSStrategy {
	case platform.DNSSystemQuery:
		return newSystemQuerySource(info)
	default:
		path := info.ResolvConfPath
		if path == "" {
			path = "/etc/resolv.conf"
		}
		return ResolvConfSource{Path: path}
	}
}

// ResolvConfSource reads nameserver entries from a resolver config file.
type ResolvConfSource struct {
	Path string
}

func (s ResolvConfSource) Servers(ctx context.Context) ([]string, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseResolvConfFrom(f)
}

func parseResolvConfFrom(r io.Reader) ([]string, error) {
	cfg, err := dns.ClientConfigFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing resolver config: %w", err)
	}
	return cleanServers(cfg.Servers), nil
}

// dnsServerMarkers match the DNS servers line of `ipconfig /all` output
// in English and Russian locales.
var dnsServerMarkers = []string{"DNS Servers", "DNS-серверы"}

// IpconfigSource parses the output of `ipconfig /all`.
type IpconfigSource struct {
	Run func(ctx context.Context) ([]byte, error)
}

func (s IpconfigSource) Servers(ctx context.Context) ([]string, error) {
	if s.Run == nil {
		return nil, errors.New("ipconfig unavailable")
	}
	out, err := s.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("running ipconfig: %w", err)
	}
	return parseIpconfigFrom(bytes.NewReader(out))
}

func parseIpconfigFrom(r io.Reader) ([]string, error) {
	var servers []string
	inList := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		if hasDNSMarker(line) {
			idx := strings.Index(line, ": ")
			if idx < 0 {
				inList = false
				continue
			}
			servers = append(servers, strings.Split(line[idx+2:], ",")...)
			inList = true
			continue
		}

		// Additional servers follow on indented lines holding only an address.
		if inList {
			candidate := strings.TrimSpace(line)
			if _, err := netip.ParseAddr(candidate); err == nil && line != candidate {
				servers = append(servers, candidate)
				continue
			}
			inList = false
		}
	}

	return cleanServers(servers), scanner.Err()
}

func hasDNSMarker(line string) bool {
	for _, m := range dnsServerMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// commandRunner returns a Run func that executes path with args.
func commandRunner(path string, args ...string) func(context.Context) ([]byte, error) {
	if path == "" {
		return nil
	}
	return func(ctx context.Context) ([]byte, error) {
		return exec.CommandContext(ctx, path, args...).Output()
	}
}

// chainSource returns the first non-empty answer from its sources.
type chainSource []DNSSource

func (c chainSource) Servers(ctx context.Context) ([]string, error) {
	var errs []error
	for _, src := range c {
		servers, err := src.Servers(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(servers) > 0 {
			return servers, nil
		}
	}
	return nil, errors.Join(errs...)
}

// cleanServers trims entries and drops empties and duplicates, keeping order.
func cleanServers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
