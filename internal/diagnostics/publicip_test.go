package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhdewitt/netscope/internal/protocol"
)

func TestPublicIPResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "203.0.113.7\n")
	}))
	defer srv.Close()

	r := &PublicIPResolver{Endpoints: []string{srv.URL}, Client: srv.Client()}
	addr, err := r.Resolve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.String() != "203.0.113.7" {
		t.Errorf("got %s", addr)
	}
}

func TestPublicIPResolver_Fallback(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "2001:db8::1")
	}))
	defer good.Close()

	r := &PublicIPResolver{Endpoints: []string{bad.URL, good.URL}, Client: http.DefaultClient}
	addr, err := r.Resolve(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.String() != "2001:db8::1" {
		t.Errorf("got %s", addr)
	}
}

func TestPublicIPResolver_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"not an ip", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "<html>hello</html>") }},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := &PublicIPResolver{Endpoints: []string{srv.URL}, Client: http.DefaultClient}
			_, err := r.Resolve(context.Background(), 200*time.Millisecond)
			if !errors.Is(err, protocol.ErrNetwork) {
				t.Errorf("expected network error, got %v", err)
			}
		})
	}
}

func TestPublicIPResolver_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := &PublicIPResolver{Endpoints: []string{url}, Client: http.DefaultClient}
	if _, err := r.Resolve(context.Background(), time.Second); !errors.Is(err, protocol.ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestNewPublicIPResolver_Defaults(t *testing.T) {
	r := NewPublicIPResolver(nil)
	if len(r.Endpoints) != len(DefaultPublicIPEndpoints) || r.Endpoints[0] != "https://api.ipify.org" {
		t.Errorf("Endpoints: got %v", r.Endpoints)
	}
	if r.Client == nil {
		t.Error("Client should be set")
	}
}
