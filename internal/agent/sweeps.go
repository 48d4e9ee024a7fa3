package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhdewitt/netscope/internal/collector"
	"github.com/nhdewitt/netscope/internal/diagnostics"
	"github.com/nhdewitt/netscope/internal/protocol"
)

func (a *Agent) newReport(kind protocol.RequestKind) protocol.Report {
	return protocol.Report{
		ID:          uuid.NewString(),
		Kind:        kind,
		GeneratedAt: time.Now().UTC(),
		OS:          a.osDesc(),
	}
}

// RunInfoSnapshot gathers the public IP, interfaces and DNS servers
// concurrently. Each part is best-effort: a failure becomes a note and the
// rest of the report is still returned.
func (a *Agent) RunInfoSnapshot(ctx context.Context) protocol.Report {
	start := time.Now()
	report := a.newReport(protocol.KindInfo)

	var (
		publicIP *string
		ipErr    error
		ifaces   []protocol.InterfaceRecord
		ifaceErr error
		servers  []string
		dnsErr   error
		g        errgroup.Group
	)

	g.Go(func() error {
		publicIP, ipErr = a.resolvePublicIP(ctx)
		return nil
	})
	g.Go(func() error {
		ifaces, ifaceErr = a.ifaces.Enumerate()
		return nil
	})
	g.Go(func() error {
		servers, dnsErr = a.dns.Servers(ctx)
		return nil
	})
	_ = g.Wait()

	report.PublicIP = publicIP
	if ipErr != nil {
		report.Notes = append(report.Notes, fmt.Sprintf("public IP unavailable: %v", ipErr))
	}

	report.Interfaces = ifaces
	if ifaceErr != nil {
		a.log.Warn("interface enumeration failed", zap.Error(ifaceErr))
		report.Interfaces = []protocol.InterfaceRecord{}
		report.Notes = append(report.Notes, fmt.Sprintf("interfaces unavailable: %v", ifaceErr))
	}

	report.DNSServers = servers
	if dnsErr != nil {
		a.log.Warn("DNS server discovery failed", zap.Error(dnsErr))
		report.DNSServers = []string{}
		report.Notes = append(report.Notes, fmt.Sprintf("DNS servers unavailable: %v", dnsErr))
	}
	if report.DNSServers == nil {
		report.DNSServers = []string{}
	}

	a.log.Info("info snapshot complete",
		zap.String("id", report.ID),
		zap.Int("interfaces", len(report.Interfaces)),
		zap.Int("dns_servers", len(report.DNSServers)),
		zap.Bool("public_ip", report.PublicIP != nil),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report
}

func (a *Agent) resolvePublicIP(ctx context.Context) (*string, error) {
	addr, err := a.publicIP.Resolve(ctx, a.Config.PublicIPTimeout.D())
	if err != nil {
		a.log.Warn("public IP lookup failed", zap.Error(err))
		return nil, err
	}
	s := addr.String()
	return &s, nil
}

// RunReachabilitySweep pings every target once. Outcomes follow the order
// of targets.
func (a *Agent) RunReachabilitySweep(ctx context.Context, targets []string) (protocol.Report, error) {
	if err := protocol.ValidateTargets(targets); err != nil {
		return protocol.Report{}, err
	}

	start := time.Now()
	report := a.newReport(protocol.KindReachability)

	jobs := make([]job, len(targets))
	for i, t := range targets {
		jobs[i] = job{Target: t}
	}

	timeout := a.Config.PingTimeout.D()
	report.Outcomes = a.sweep(ctx, jobs, func(ctx context.Context, j job) protocol.ProbeOutcome {
		return a.reach.Probe(ctx, j.Target, timeout)
	})

	a.logSweep(report, len(jobs), start)
	return report, nil
}

// RunPortSweep probes every port on host, keeping order and duplicates.
// With includePublicIP the same ports are first probed on the public
// address, when it can be resolved.
func (a *Agent) RunPortSweep(ctx context.Context, host string, ports []int, includePublicIP bool) (protocol.Report, error) {
	req := protocol.Request{Kind: protocol.KindPorts, Host: host, Ports: ports}
	if err := req.Validate(); err != nil {
		return protocol.Report{}, err
	}

	start := time.Now()
	report := a.newReport(protocol.KindPorts)

	var targets []string
	if includePublicIP {
		ip, err := a.resolvePublicIP(ctx)
		if err != nil {
			report.Notes = append(report.Notes, fmt.Sprintf("public IP unavailable: %v", err))
		} else {
			report.PublicIP = ip
			targets = append(targets, *ip)
		}
	}
	targets = append(targets, host)

	jobs := make([]job, 0, len(targets)*len(ports))
	for _, t := range targets {
		for _, p := range ports {
			jobs = append(jobs, job{Target: t, Port: p})
		}
	}

	timeout := a.Config.ConnectTimeout.D()
	report.Outcomes = a.sweep(ctx, jobs, func(ctx context.Context, j job) protocol.ProbeOutcome {
		return a.ports.Probe(ctx, j.Target, j.Port, timeout)
	})

	a.logSweep(report, len(jobs), start)
	return report, nil
}

// RunServiceSweep checks every catalog entry on the configured service host.
func (a *Agent) RunServiceSweep(ctx context.Context) protocol.Report {
	start := time.Now()
	report := a.newReport(protocol.KindServices)

	catalog, notes := a.Catalog(ctx)
	report.Notes = append(report.Notes, notes...)

	host := a.Config.ServiceHost
	jobs := make([]job, len(catalog))
	for i, s := range catalog {
		jobs[i] = job{Target: host, Port: s.Port}
	}

	timeout := a.Config.ConnectTimeout.D()
	outcomes := a.sweep(ctx, jobs, func(ctx context.Context, j job) protocol.ProbeOutcome {
		return a.ports.Probe(ctx, j.Target, j.Port, timeout)
	})

	report.Services = make([]protocol.ServiceCheck, len(catalog))
	for i, s := range catalog {
		report.Services[i] = protocol.ServiceCheck{Name: s.Name, Port: s.Port, Outcome: outcomes[i]}
	}

	a.logSweep(report, len(jobs), start)
	return report
}

// Catalog returns the services checked by a service sweep: the built-in
// list, configured extras, then published container ports when enabled.
func (a *Agent) Catalog(ctx context.Context) ([]protocol.Service, []string) {
	var notes []string
	var containers []protocol.Service

	if a.Config.DockerServices {
		svcs, err := a.containerServices(ctx)
		if err != nil {
			a.log.Warn("container service discovery failed", zap.Error(err))
			notes = append(notes, fmt.Sprintf("container services unavailable: %v", err))
		}
		containers = svcs
	}

	return diagnostics.MergeCatalog(diagnostics.DefaultCatalog(), a.Config.Services, containers), notes
}

func (a *Agent) containerServices(ctx context.Context) ([]protocol.Service, error) {
	a.dockerMu.Lock()
	defer a.dockerMu.Unlock()

	if a.docker == nil {
		cli, err := collector.NewDockerClient()
		if err != nil {
			return nil, err
		}
		a.docker = cli
	}
	return collector.ContainerServices(ctx, a.docker)
}

func (a *Agent) logSweep(report protocol.Report, probes int, start time.Time) {
	fields := []zap.Field{
		zap.String("id", report.ID),
		zap.String("kind", string(report.Kind)),
		zap.Int("probes", probes),
		zap.Duration("elapsed", time.Since(start)),
	}
	for kind, n := range report.Summary() {
		fields = append(fields, zap.Int(string(kind), n))
	}
	a.log.Info("sweep complete", fields...)
}
