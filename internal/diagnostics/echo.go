package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// EchoResult is the raw result of one echo attempt.
type EchoResult struct {
	ExitCode int
	Output   string
	TimedOut bool // the attempt hit its own wait bound
	NoReply  bool // exit 0 without an echo reply
}

// Echoer sends a single echo request to target.
// A non-nil error means the echo could not be attempted at all.
type Echoer interface {
	Echo(ctx context.Context, target string, timeout time.Duration) (EchoResult, error)
}

// killGrace is how long past its own wait bound a ping subprocess may run
// before it is killed.
const killGrace = time.Second

// PingEchoer runs the OS ping utility once with a bounded wait.
type PingEchoer struct {
	Path string
}

func (p PingEchoer) Echo(ctx context.Context, target string, timeout time.Duration) (EchoResult, error) {
	path := p.Path
	if path == "" {
		path = "ping"
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout+killGrace)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, pingArgs(target, timeout)...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return EchoResult{
			Output:  string(out),
			NoReply: requireTTLReply && !hasTTLReply(string(out)),
		}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return EchoResult{
			ExitCode: exitErr.ExitCode(),
			Output:   string(out) + stderr.String(),
			TimedOut: runCtx.Err() != nil && ctx.Err() == nil,
		}, nil
	}

	if ctx.Err() != nil {
		return EchoResult{}, ctx.Err()
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return EchoResult{}, fmt.Errorf("%w: ping utility not found: %v", protocol.ErrCapability, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return EchoResult{}, fmt.Errorf("%w: ping not permitted: %v", protocol.ErrCapability, err)
	}
	return EchoResult{}, fmt.Errorf("%w: running ping: %v", protocol.ErrCapability, err)
}

// ReachabilityProbe classifies echo attempts into reachability outcomes.
type ReachabilityProbe struct {
	echoer Echoer
}

func NewReachabilityProbe(e Echoer) *ReachabilityProbe {
	if e == nil {
		e = PingEchoer{}
	}
	return &ReachabilityProbe{echoer: e}
}

func (p *ReachabilityProbe) Probe(ctx context.Context, target string, timeout time.Duration) protocol.ProbeOutcome {
	if err := protocol.ValidateTarget(target); err != nil {
		return protocol.ErrorOutcome(target, 0, err.Error())
	}

	start := time.Now()
	res, err := p.echoer.Echo(ctx, target, timeout)
	rtt := time.Since(start)
	if err != nil {
		return protocol.ErrorOutcome(target, 0, err.Error())
	}

	out := protocol.ProbeOutcome{
		Target: target,
		Raw:    res.Output,
		RTT:    rtt,
	}

	switch {
	case res.ExitCode == 0 && !res.TimedOut && !res.NoReply:
		out.Kind = protocol.OutcomeReachable
	case res.NoReply:
		out.Kind = protocol.OutcomeUnreachable
		out.Message = "no reply"
	case res.TimedOut:
		out.Kind = protocol.OutcomeUnreachable
		out.Message = "timeout"
	default:
		out.Kind = protocol.OutcomeUnreachable
		out.Message = fmt.Sprintf("exit status %d", res.ExitCode)
	}

	return out
}
