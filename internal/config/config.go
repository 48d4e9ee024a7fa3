// Package config loads netscope settings from defaults, an optional YAML
// file, and NETSCOPE_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/nhdewitt/netscope/internal/protocol"
)

const (
	DefaultWorkers = 16
	MaxWorkers     = 32
)

// Duration is a time.Duration written as a Go duration string ("2s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) D() time.Duration { return time.Duration(d) }

type Config struct {
	Workers           int                `json:"workers"`
	PingTimeout       Duration           `json:"ping_timeout"`
	ConnectTimeout    Duration           `json:"connect_timeout"`
	PublicIPTimeout   Duration           `json:"public_ip_timeout"`
	SweepTimeout      Duration           `json:"sweep_timeout"`
	ServiceHost       string             `json:"service_host"`
	PublicIPEndpoints []string           `json:"public_ip_endpoints"`
	ResolvConf        string             `json:"resolv_conf"`
	Services          []protocol.Service `json:"services"`
	DockerServices    bool               `json:"docker_services"`
	ListenAddr        string             `json:"listen_addr"`
	ReportsDir        string             `json:"reports_dir"`
	LogLevel          string             `json:"log_level"`
}

func Default() Config {
	return Config{
		Workers:           DefaultWorkers,
		PingTimeout:       Duration(2 * time.Second),
		ConnectTimeout:    Duration(time.Second),
		PublicIPTimeout:   Duration(5 * time.Second),
		SweepTimeout:      Duration(time.Minute),
		ServiceHost:       "127.0.0.1",
		PublicIPEndpoints: []string{"https://api.ipify.org", "https://ident.me"},
		ListenAddr:        "127.0.0.1:8080",
		ReportsDir:        "reports",
		LogLevel:          "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = Duration(d)
		}
	}

	if v, ok := lookup("NETSCOPE_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("NETSCOPE_WORKERS: %w", err))
		} else {
			c.Workers = n
		}
	}
	if v, ok := lookup("NETSCOPE_DOCKER_SERVICES"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("NETSCOPE_DOCKER_SERVICES: %w", err))
		} else {
			c.DockerServices = b
		}
	}
	if v, ok := lookup("NETSCOPE_PUBLIC_IP_ENDPOINTS"); ok && v != "" {
		var eps []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				eps = append(eps, e)
			}
		}
		c.PublicIPEndpoints = eps
	}

	dur("NETSCOPE_PING_TIMEOUT", &c.PingTimeout)
	dur("NETSCOPE_CONNECT_TIMEOUT", &c.ConnectTimeout)
	dur("NETSCOPE_PUBLIC_IP_TIMEOUT", &c.PublicIPTimeout)
	dur("NETSCOPE_SWEEP_TIMEOUT", &c.SweepTimeout)
	str("NETSCOPE_SERVICE_HOST", &c.ServiceHost)
	str("NETSCOPE_RESOLV_CONF", &c.ResolvConf)
	str("NETSCOPE_LISTEN_ADDR", &c.ListenAddr)
	str("NETSCOPE_REPORTS_DIR", &c.ReportsDir)
	str("NETSCOPE_LOG_LEVEL", &c.LogLevel)

	if len(errs) > 0 {
		return fmt.Errorf("%w: environment: %w", protocol.ErrValidation, errors.Join(errs...))
	}
	return nil
}

// Validate checks ranges only; workers above MaxWorkers are clamped later
// against the host's limits.
func (c Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	for name, d := range map[string]Duration{
		"ping_timeout":      c.PingTimeout,
		"connect_timeout":   c.ConnectTimeout,
		"public_ip_timeout": c.PublicIPTimeout,
		"sweep_timeout":     c.SweepTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if err := protocol.ValidateTarget(c.ServiceHost); err != nil {
		errs = append(errs, fmt.Errorf("service_host: %w", err))
	}
	for i, s := range c.Services {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("services[%d]: name is empty", i))
		}
		if err := protocol.ValidatePort(s.Port); err != nil {
			errs = append(errs, fmt.Errorf("services[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: config: %w", protocol.ErrValidation, errors.Join(errs...))
	}
	return nil
}
