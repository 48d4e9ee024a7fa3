package protocol

import (
	"time"
)

// OutcomeKind classifies the result of a single probe.
type OutcomeKind string

const (
	OutcomeReachable   OutcomeKind = "reachable"
	OutcomeUnreachable OutcomeKind = "unreachable"
	OutcomePortOpen    OutcomeKind = "open"
	OutcomePortClosed  OutcomeKind = "closed"
	OutcomeError       OutcomeKind = "error"
)

// ProbeOutcome is the classified result for one (target, port) pair.
// Port is zero for reachability probes.
type ProbeOutcome struct {
	Target  string        `json:"target"`
	Port    int           `json:"port,omitempty"`
	Kind    OutcomeKind   `json:"kind"`
	Message string        `json:"message,omitempty"` // error text or classification reason
	Raw     string        `json:"raw,omitempty"`     // raw utility output, e.g. ping stdout
	RTT     time.Duration `json:"rtt"`
}

// Succeeded reports whether the probe got a positive answer from the target.
func (o ProbeOutcome) Succeeded() bool {
	return o.Kind == OutcomeReachable || o.Kind == OutcomePortOpen
}

// ErrorOutcome builds an error outcome for target/port.
func ErrorOutcome(target string, port int, msg string) ProbeOutcome {
	return ProbeOutcome{
		Target:  target,
		Port:    port,
		Kind:    OutcomeError,
		Message: msg,
	}
}

type IPv4Entry struct {
	Address string `json:"address"`
	Netmask string `json:"netmask"`
}

// InterfaceRecord describes one OS-visible network interface.
// MAC is nil when the interface has no hardware address.
type InterfaceRecord struct {
	Name string      `json:"name"`
	IPv4 []IPv4Entry `json:"ipv4"`
	IPv6 []string    `json:"ipv6"`
	MAC  *string     `json:"mac,omitempty"`
}

// Service is one well-known service catalog entry.
type Service struct {
	Name string `json:"name"`
	Port int    `json:"port"`
}

type ServiceCheck struct {
	Name    string       `json:"name"`
	Port    int          `json:"port"`
	Outcome ProbeOutcome `json:"outcome"`
}

// Report is an immutable snapshot produced by one orchestration call.
type Report struct {
	ID          string            `json:"id"`
	Kind        RequestKind       `json:"kind"`
	GeneratedAt time.Time         `json:"generated_at"`
	OS          string            `json:"os"`
	PublicIP    *string           `json:"public_ip,omitempty"`
	Interfaces  []InterfaceRecord `json:"interfaces,omitempty"`
	DNSServers  []string          `json:"dns_servers,omitempty"`
	Outcomes    []ProbeOutcome    `json:"outcomes,omitempty"`
	Services    []ServiceCheck    `json:"services,omitempty"`
	Notes       []string          `json:"notes,omitempty"`
}

// Summary counts outcomes (including service checks) by kind.
func (r Report) Summary() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, o := range r.Outcomes {
		counts[o.Kind]++
	}
	for _, s := range r.Services {
		counts[s.Outcome.Kind]++
	}
	return counts
}

// Clone returns a deep copy that shares no memory with r.
func (r Report) Clone() Report {
	c := r
	if r.PublicIP != nil {
		ip := *r.PublicIP
		c.PublicIP = &ip
	}
	if r.Interfaces != nil {
		c.Interfaces = make([]InterfaceRecord, len(r.Interfaces))
		for i, rec := range r.Interfaces {
			c.Interfaces[i] = rec.clone()
		}
	}
	c.DNSServers = cloneSlice(r.DNSServers)
	c.Outcomes = cloneSlice(r.Outcomes)
	c.Services = cloneSlice(r.Services)
	c.Notes = cloneSlice(r.Notes)
	return c
}

func (rec InterfaceRecord) clone() InterfaceRecord {
	c := rec
	c.IPv4 = cloneSlice(rec.IPv4)
	c.IPv6 = cloneSlice(rec.IPv6)
	if rec.MAC != nil {
		mac := *rec.MAC
		c.MAC = &mac
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
