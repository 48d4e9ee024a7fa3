package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

type RequestKind string

const (
	KindInfo         RequestKind = "info"
	KindReachability RequestKind = "reachability"
	KindPorts        RequestKind = "ports"
	KindServices     RequestKind = "services"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Request is one diagnostic request as built by a front end.
type Request struct {
	Kind            RequestKind `json:"kind"`
	Targets         []string    `json:"targets,omitempty"`
	Host            string      `json:"host,omitempty"`
	Ports           []int       `json:"ports,omitempty"`
	IncludePublicIP bool        `json:"include_public_ip,omitempty"`
}

// Validate rejects malformed input before any probe is dispatched.
// Targets and Host are expected to be trimmed already.
func (r Request) Validate() error {
	switch r.Kind {
	case KindInfo, KindServices:
		return nil
	case KindReachability:
		return ValidateTargets(r.Targets)
	case KindPorts:
		if err := ValidateTarget(r.Host); err != nil {
			return err
		}
		if len(r.Ports) == 0 {
			return fmt.Errorf("%w: port list is empty", ErrValidation)
		}
		for _, p := range r.Ports {
			if err := ValidatePort(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown request kind %q", ErrValidation, r.Kind)
	}
}

func ValidateTarget(t string) error {
	if strings.TrimSpace(t) == "" {
		return fmt.Errorf("%w: target is empty", ErrValidation)
	}
	return nil
}

func ValidateTargets(targets []string) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: target list is empty", ErrValidation)
	}
	for i, t := range targets {
		if err := ValidateTarget(t); err != nil {
			return fmt.Errorf("target #%d: %w", i+1, err)
		}
	}
	return nil
}

func ValidatePort(p int) error {
	if p < MinPort || p > MaxPort {
		return fmt.Errorf("%w: port %d out of range %d..%d", ErrValidation, p, MinPort, MaxPort)
	}
	return nil
}

// ParseTargets splits comma-separated operator input into trimmed targets.
// An empty entry anywhere in the list is rejected, not skipped.
func ParseTargets(csv string) ([]string, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, fmt.Errorf("%w: target list is empty", ErrValidation)
	}

	parts := strings.Split(csv, ",")
	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		targets = append(targets, strings.TrimSpace(p))
	}
	if err := ValidateTargets(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// ParsePorts parses a comma-separated port list. Order and duplicates are
// preserved; any non-numeric or out-of-range entry fails the whole list.
func ParsePorts(csv string) ([]int, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, fmt.Errorf("%w: port list is empty", ErrValidation)
	}

	parts := strings.Split(csv, ",")
	ports := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid port %q", ErrValidation, p)
		}
		if err := ValidatePort(v); err != nil {
			return nil, err
		}
		ports = append(ports, v)
	}
	return ports, nil
}
