package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// DefaultPublicIPEndpoints are tried in order until one answers.
var DefaultPublicIPEndpoints = []string{
	"https://api.ipify.org",
	"https://ident.me",
}

// PublicIPResolver asks plaintext IP-echo services for this host's
// public address.
type PublicIPResolver struct {
	Endpoints []string
	Client    *http.Client
}

func NewPublicIPResolver(endpoints []string) *PublicIPResolver {
	if len(endpoints) == 0 {
		endpoints = DefaultPublicIPEndpoints
	}
	return &PublicIPResolver{
		Endpoints: endpoints,
		Client:    NewHTTPClient(),
	}
}

// Resolve returns the first address reported by an endpoint. All
// failures wrap protocol.ErrNetwork.
func (r *PublicIPResolver) Resolve(ctx context.Context, timeout time.Duration) (netip.Addr, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var errs []error
	for _, url := range r.Endpoints {
		addr, err := fetchIP(ctx, r.Client, url)
		if err == nil {
			return addr, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", url, err))
		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return netip.Addr{}, fmt.Errorf("%w: no public IP endpoints configured", protocol.ErrNetwork)
	}
	return netip.Addr{}, fmt.Errorf("%w: %w", protocol.ErrNetwork, errors.Join(errs...))
}

func fetchIP(ctx context.Context, client *http.Client, url string) (netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return netip.Addr{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return netip.Addr{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if err != nil {
		return netip.Addr{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return netip.Addr{}, fmt.Errorf("http status %d", resp.StatusCode)
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("unexpected body: %w", err)
	}
	return addr.Unmap(), nil
}
