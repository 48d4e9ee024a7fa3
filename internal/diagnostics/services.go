package diagnostics

import "github.com/nhdewitt/netscope/internal/protocol"

// DefaultCatalog returns the well-known services checked by a service
// sweep, in report order.
func DefaultCatalog() []protocol.Service {
	return []protocol.Service{
		{Name: "HTTP", Port: 80},
		{Name: "HTTPS", Port: 443},
		{Name: "FTP", Port: 21},
		{Name: "SSH", Port: 22},
		{Name: "SMTP", Port: 25},
		{Name: "DNS", Port: 53},
		{Name: "SNMP", Port: 161},
		{Name: "MySQL", Port: 3306},
		{Name: "PostgreSQL", Port: 5432},
		{Name: "MongoDB", Port: 27017},
	}
}

// MergeCatalog appends extra entries to base, skipping any whose port is
// already present.
func MergeCatalog(base []protocol.Service, extra ...[]protocol.Service) []protocol.Service {
	out := make([]protocol.Service, 0, len(base))
	seen := make(map[int]struct{}, len(base))

	add := func(s protocol.Service) {
		if _, dup := seen[s.Port]; dup {
			return
		}
		seen[s.Port] = struct{}{}
		out = append(out, s)
	}

	for _, s := range base {
		add(s)
	}
	for _, list := range extra {
		for _, s := range list {
			add(s)
		}
	}
	return out
}
