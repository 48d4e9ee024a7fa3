package collector

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/docker/docker/api/types/container"

	"github.com/nhdewitt/netscope/internal/protocol"
)

type mockDockerClient struct {
	containers []container.Summary
	err        error
}

func (m *mockDockerClient) ContainerList(ctx context.Context, opts container.ListOptions) ([]container.Summary, error) {
	return m.containers, m.err
}

func (m *mockDockerClient) Close() error {
	return nil
}

func TestContainerServices(t *testing.T) {
	cli := &mockDockerClient{
		containers: []container.Summary{
			{
				ID:    "abc123def4567890",
				Names: []string{"/web"},
				Ports: []container.Port{
					{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
					{IP: "::", PrivatePort: 80, PublicPort: 8080, Type: "tcp"},
					{PrivatePort: 9000, Type: "tcp"},
				},
			},
			{
				ID: "fedcba9876543210ffff",
				Ports: []container.Port{
					{IP: "0.0.0.0", PrivatePort: 53, PublicPort: 5353, Type: "udp"},
					{IP: "0.0.0.0", PrivatePort: 5432, PublicPort: 15432, Type: "tcp"},
				},
			},
		},
	}

	got, err := ContainerServices(context.Background(), cli)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []protocol.Service{
		{Name: "web/80", Port: 8080},
		{Name: "fedcba987654/5432", Port: 15432},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestContainerServices_NoContainers(t *testing.T) {
	got, err := ContainerServices(context.Background(), &mockDockerClient{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no services, got %v", got)
	}
}

func TestContainerServices_ListError(t *testing.T) {
	_, err := ContainerServices(context.Background(), &mockDockerClient{err: errors.New("permission denied on socket")})
	if err == nil {
		t.Fatal("expected error")
	}
}
