package agent

import (
	"context"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhdewitt/netscope/internal/collector"
	"github.com/nhdewitt/netscope/internal/config"
	"github.com/nhdewitt/netscope/internal/diagnostics"
	"github.com/nhdewitt/netscope/internal/platform"
	"github.com/nhdewitt/netscope/internal/protocol"
	"github.com/nhdewitt/netscope/internal/store"
)

// ReachabilityProber checks whether a target answers echo requests.
type ReachabilityProber interface {
	Probe(ctx context.Context, target string, timeout time.Duration) protocol.ProbeOutcome
}

// PortProber checks whether a TCP port accepts connections.
type PortProber interface {
	Probe(ctx context.Context, host string, port int, timeout time.Duration) protocol.ProbeOutcome
}

type PublicIPResolver interface {
	Resolve(ctx context.Context, timeout time.Duration) (netip.Addr, error)
}

type InterfaceLister interface {
	Enumerate() ([]protocol.InterfaceRecord, error)
}

type ReportStore interface {
	Save(report protocol.Report, path string) error
}

// Agent runs diagnostic requests and assembles their reports.
type Agent struct {
	Config   config.Config
	Platform platform.Info

	log     *zap.Logger
	workers int

	reach    ReachabilityProber
	ports    PortProber
	publicIP PublicIPResolver
	ifaces   InterfaceLister
	dns      collector.DNSSource
	store    ReportStore
	osDesc   func() string

	dockerMu sync.Mutex
	docker   collector.DockerClient
}

type Option func(*Agent)

func WithReachabilityProber(p ReachabilityProber) Option { return func(a *Agent) { a.reach = p } }
func WithPortProber(p PortProber) Option { return func(a *Agent) { a.ports = p } }
func WithPublicIPResolver(r PublicIPResolver) Option { return func(a *Agent) { a.publicIP = r } }
func WithInterfaceLister(l InterfaceLister) Option { return func(a *Agent) { a.ifaces = l } }
func WithDNSSource(s collector.DNSSource) Option { return func(a *Agent) { a.dns = s } }
func WithReportStore(s ReportStore) Option { return func(a *Agent) { a.store = s } }
func WithDockerClient(c collector.DockerClient) Option { return func(a *Agent) { a.docker = c } }
func WithOSDescriptor(f func() string) Option { return func(a *Agent) { a.osDesc = f } }
func WithPlatform(info platform.Info) Option { return func(a *Agent) { a.Platform = info } }

// New creates an Agent with the default OS-backed probes. Options replace
// individual components.
func New(cfg config.Config, log *zap.Logger, opts ...Option) *Agent {
	if log == nil {
		log = zap.NewNop()
	}

	a := &Agent{
		Config:   cfg,
		Platform: platform.Detect(),
		log:      log.Named("agent"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.ResolvConf != "" {
		a.Platform.DNSStrategy = platform.DNSResolvConf
		a.Platform.ResolvConfPath = cfg.ResolvConf
	}

	if a.reach == nil {
		a.reach = diagnostics.NewReachabilityProbe(diagnostics.PingEchoer{Path: a.Platform.PingPath})
	}
	if a.ports == nil {
		a.ports = diagnostics.NewPortProbe()
	}
	if a.publicIP == nil {
		a.publicIP = diagnostics.NewPublicIPResolver(cfg.PublicIPEndpoints)
	}
	if a.ifaces == nil {
		a.ifaces = collector.NewInspector()
	}
	if a.dns == nil {
		a.dns = collector.NewDNSSource(a.Platform)
	}
	if a.store == nil {
		a.store = store.NewFileStore()
	}
	if a.osDesc == nil {
		a.osDesc = collector.OSDescriptor
	}

	a.workers = effectiveWorkers(cfg.Workers, a.Platform.OpenFilesLimit)
	a.log.Debug("agent ready",
		zap.Int("workers", a.workers),
		zap.String("os", a.Platform.OS),
		zap.Bool("privileged", a.Platform.Privileged),
	)

	return a
}

// Workers is the effective number of concurrent probes per sweep.
func (a *Agent) Workers() int { return a.workers }

// Close releases the Docker client, if one was opened.
func (a *Agent) Close() error {
	a.dockerMu.Lock()
	defer a.dockerMu.Unlock()

	if a.docker != nil {
		return a.docker.Close()
	}
	return nil
}

// Run validates req and dispatches it to the matching sweep.
func (a *Agent) Run(ctx context.Context, req protocol.Request) (protocol.Report, error) {
	if err := req.Validate(); err != nil {
		return protocol.Report{}, err
	}

	switch req.Kind {
	case protocol.KindInfo:
		return a.RunInfoSnapshot(ctx), nil
	case protocol.KindReachability:
		return a.RunReachabilitySweep(ctx, req.Targets)
	case protocol.KindPorts:
		return a.RunPortSweep(ctx, req.Host, req.Ports, req.IncludePublicIP)
	default:
		return a.RunServiceSweep(ctx), nil
	}
}

// SaveReport persists report at path. A failed save leaves report usable
// for a retry elsewhere.
func (a *Agent) SaveReport(report protocol.Report, path string) error {
	if err := a.store.Save(report, path); err != nil {
		a.log.Warn("saving report failed", zap.String("id", report.ID), zap.String("path", path), zap.Error(err))
		return err
	}
	a.log.Info("report saved", zap.String("id", report.ID), zap.String("path", path))
	return nil
}
