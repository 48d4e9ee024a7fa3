package protocol

import (
	"fmt"
	"strings"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// Text renders the report in its human-readable form. This is the form
// shown to the operator and written by the report store.
func (r Report) Text() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s (%s) generated %s\n", r.ID, r.Kind, r.GeneratedAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "Operating system: %s\n\n", r.OS)

	switch r.Kind {
	case KindInfo:
		r.writeInfo(&b)
	case KindReachability:
		r.writeReachability(&b)
	case KindPorts:
		r.writePorts(&b)
	case KindServices:
		r.writeServices(&b)
	}

	if len(r.Notes) > 0 {
		b.WriteString("Notes:\n")
		for _, n := range r.Notes {
			fmt.Fprintf(&b, "  - %s\n", n)
		}
	}

	return b.String()
}

func (r Report) writeInfo(b *strings.Builder) {
	if r.PublicIP != nil {
		fmt.Fprintf(b, "Public IP address: %s\n\n", *r.PublicIP)
	} else {
		b.WriteString("Public IP address: unavailable\n\n")
	}

	for _, rec := range r.Interfaces {
		fmt.Fprintf(b, "Interface: %s\n", rec.Name)
		for _, v4 := range rec.IPv4 {
			fmt.Fprintf(b, "  IPv4 address: %s\n", v4.Address)
			fmt.Fprintf(b, "  Netmask: %s\n", v4.Netmask)
		}
		for _, v6 := range rec.IPv6 {
			fmt.Fprintf(b, "  IPv6 address: %s\n", v6)
		}
		if rec.MAC != nil {
			fmt.Fprintf(b, "  MAC address: %s\n", *rec.MAC)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "DNS servers: %s\n\n", strings.Join(r.DNSServers, ", "))
}

func (r Report) writeReachability(b *strings.Builder) {
	for _, o := range r.Outcomes {
		fmt.Fprintf(b, "Ping %s: %s\n", o.Target, describe(o))
		if raw := strings.TrimSpace(o.Raw); raw != "" {
			b.WriteString(raw)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func (r Report) writePorts(b *strings.Builder) {
	if r.PublicIP != nil {
		fmt.Fprintf(b, "Public IP address: %s\n", *r.PublicIP)
	}

	current := ""
	for i, o := range r.Outcomes {
		if i == 0 || o.Target != current {
			current = o.Target
			fmt.Fprintf(b, "\nPorts on %s:\n", current)
		}
		fmt.Fprintf(b, "  Port %d %s\n", o.Port, describe(o))
	}
	b.WriteString("\n")
}

func (r Report) writeServices(b *strings.Builder) {
	for _, s := range r.Services {
		switch s.Outcome.Kind {
		case OutcomePortOpen:
			fmt.Fprintf(b, "Service %s available on port %d\n", s.Name, s.Port)
		case OutcomePortClosed:
			fmt.Fprintf(b, "Service %s unavailable on port %d\n", s.Name, s.Port)
		default:
			fmt.Fprintf(b, "Service %s check failed on port %d: %s\n", s.Name, s.Port, s.Outcome.Message)
		}
	}
	b.WriteString("\n")
}

func describe(o ProbeOutcome) string {
	if o.Message == "" {
		return string(o.Kind)
	}
	return fmt.Sprintf("%s (%s)", o.Kind, o.Message)
}
