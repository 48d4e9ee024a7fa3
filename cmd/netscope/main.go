package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/nhdewitt/netscope/internal/agent"
	"github.com/nhdewitt/netscope/internal/config"
	"github.com/nhdewitt/netscope/internal/logging"
	"github.com/nhdewitt/netscope/internal/protocol"
	"github.com/nhdewitt/netscope/internal/server"
)

const usage = `usage: netscope <command> [flags]

commands:
  info       interfaces, DNS servers and public IP
  ping       reachability of -targets
  ports      TCP ports -ports on -host
  services   well-known services on the service host
  serve      run the HTTP API

run "netscope <command> -h" for command flags
`

const (
	exitOK = iota
	exitFailure
	exitUsage
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// options holds flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	out        string
	json       bool

	targets string
	host    string
	ports   string
	public  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmd := args[0]
	var opts options

	fs := flag.NewFlagSet("netscope "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", os.Getenv("NETSCOPE_CONFIG"), "YAML config file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	switch cmd {
	case "info", "services":
		addReportFlags(fs, &opts)
	case "ping":
		addReportFlags(fs, &opts)
		fs.StringVar(&opts.targets, "targets", "", "comma-separated hosts or addresses")
	case "ports":
		addReportFlags(fs, &opts)
		fs.StringVar(&opts.host, "host", "127.0.0.1", "host to probe")
		fs.StringVar(&opts.ports, "ports", "", "comma-separated TCP ports")
		fs.BoolVar(&opts.public, "public", false, "also probe the ports on this host's public IP")
	case "serve":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	// Positional arguments are accepted as targets for ping.
	if cmd == "ping" && opts.targets == "" && fs.NArg() > 0 {
		opts.targets = strings.Join(fs.Args(), ",")
	}

	req, err := buildRequest(cmd, opts)
	if err != nil {
		fmt.Fprintln(stderr, "netscope:", err)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(stderr, "netscope:", err)
		return exitUsage
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, "netscope:", err)
		return exitUsage
	}
	defer log.Sync()

	a := agent.New(cfg, log)
	defer a.Close()

	if cmd == "serve" {
		return serve(ctx, cfg, a, log)
	}

	report, err := a.Run(ctx, req)
	if err != nil {
		fmt.Fprintln(stderr, "netscope:", err)
		if errors.Is(err, protocol.ErrValidation) {
			return exitUsage
		}
		return exitFailure
	}

	if err := printReport(stdout, report, opts.json); err != nil {
		fmt.Fprintln(stderr, "netscope:", err)
		return exitFailure
	}

	if opts.out != "" {
		if err := a.SaveReport(report, opts.out); err != nil {
			fmt.Fprintln(stderr, "netscope: saving report:", err)
			return exitFailure
		}
		fmt.Fprintf(stderr, "report saved to %s\n", opts.out)
	}

	return exitOK
}

func addReportFlags(fs *flag.FlagSet, opts *options) {
	fs.StringVar(&opts.out, "out", "", "save the report to this file (.json saves JSON)")
	fs.BoolVar(&opts.json, "json", false, "print the report as JSON")
}

// buildRequest turns command-line input into a validated request. The
// serve command has no request and returns a zero value.
func buildRequest(cmd string, opts options) (protocol.Request, error) {
	var req protocol.Request

	switch cmd {
	case "info":
		req.Kind = protocol.KindInfo
	case "services":
		req.Kind = protocol.KindServices
	case "ping":
		targets, err := protocol.ParseTargets(opts.targets)
		if err != nil {
			return req, err
		}
		req = protocol.Request{Kind: protocol.KindReachability, Targets: targets}
	case "ports":
		ports, err := protocol.ParsePorts(opts.ports)
		if err != nil {
			return req, err
		}
		req = protocol.Request{
			Kind:            protocol.KindPorts,
			Host:            strings.TrimSpace(opts.host),
			Ports:           ports,
			IncludePublicIP: opts.public,
		}
	default:
		return req, nil
	}

	return req, req.Validate()
}

func serve(ctx context.Context, cfg config.Config, a *agent.Agent, log *zap.Logger) int {
	srv := server.New(server.Config{
		ListenAddr:   cfg.ListenAddr,
		ReportsDir:   cfg.ReportsDir,
		SweepTimeout: cfg.SweepTimeout.D(),
	}, a, log)

	if err := srv.Start(ctx); err != nil {
		log.Error("server stopped", zap.Error(err))
		return exitFailure
	}
	log.Info("server stopped")
	return exitOK
}

func printReport(w io.Writer, report protocol.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if _, err := io.WriteString(w, report.Text()); err != nil {
		return err
	}

	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		color.NoColor = true
	}
	if line := summaryLine(report.Summary()); line != "" {
		_, err := fmt.Fprintln(w, line)
		return err
	}
	return nil
}

var kindColors = map[protocol.OutcomeKind]*color.Color{
	protocol.OutcomeReachable:   color.New(color.FgGreen),
	protocol.OutcomePortOpen:    color.New(color.FgGreen),
	protocol.OutcomeUnreachable: color.New(color.FgYellow),
	protocol.OutcomePortClosed:  color.New(color.FgYellow),
	protocol.OutcomeError:       color.New(color.FgRed, color.Bold),
}

// summaryLine renders outcome counts like "2 open, 1 closed".
func summaryLine(counts map[protocol.OutcomeKind]int) string {
	kinds := make([]protocol.OutcomeKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		text := fmt.Sprintf("%d %s", counts[k], k)
		if c, ok := kindColors[k]; ok {
			text = c.Sprint(text)
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return ""
	}
	return "Summary: " + strings.Join(parts, ", ")
}
