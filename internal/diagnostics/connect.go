package diagnostics

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// PortProbe performs single TCP connect attempts.
type PortProbe struct {
	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewPortProbe() *PortProbe {
	var d net.Dialer
	return &PortProbe{dial: d.DialContext}
}

// Probe dials host:port once. The connection, if any, is closed before
// returning.
func (p *PortProbe) Probe(ctx context.Context, host string, port int, timeout time.Duration) protocol.ProbeOutcome {
	if err := protocol.ValidateTarget(host); err != nil {
		return protocol.ErrorOutcome(host, port, err.Error())
	}
	if err := protocol.ValidatePort(port); err != nil {
		return protocol.ErrorOutcome(host, port, err.Error())
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	start := time.Now()
	conn, err := p.dial(dialCtx, "tcp", addr)
	rtt := time.Since(start)

	out := protocol.ProbeOutcome{Target: host, Port: port, RTT: rtt}
	if err == nil {
		_ = conn.Close()
		out.Kind = protocol.OutcomePortOpen
		return out
	}

	kind, msg := classifyDialError(err)
	out.Kind = kind
	out.Message = msg
	return out
}

// classifyDialError maps a failed connect to closed (the target or the
// path to it answered negatively or not at all) or error (the attempt
// could not be made).
func classifyDialError(err error) (protocol.OutcomeKind, string) {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return protocol.OutcomeError, "dns: " + dnsErr.Err
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return protocol.OutcomePortClosed, "timeout"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return protocol.OutcomePortClosed, "timeout"
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return protocol.OutcomePortClosed, "connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return protocol.OutcomePortClosed, "connection reset"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return protocol.OutcomePortClosed, "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		return protocol.OutcomePortClosed, "network unreachable"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		var sysErr *os.SyscallError
		if errors.As(err, &sysErr) && sysErr.Syscall == "socket" {
			return protocol.OutcomeError, err.Error()
		}
	}

	// Windows reports some refusals only through the message text.
	msg := err.Error()
	if strings.Contains(msg, "refused") {
		return protocol.OutcomePortClosed, "connection refused"
	}

	return protocol.OutcomeError, msg
}
