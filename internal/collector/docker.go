package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// DockerClient is the subset of the Docker API used to discover
// published container ports.
type DockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

// NewDockerClient connects using the standard DOCKER_* environment.
func NewDockerClient() (DockerClient, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// ContainerServices turns the published TCP ports of running containers
// into catalog entries named "<container>/<private port>". A daemon that
// cannot be reached yields no services and no error.
func ContainerServices(ctx context.Context, cli DockerClient) ([]protocol.Service, error) {
	containers, err := cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		if client.IsErrConnectionFailed(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("docker list failed: %w", err)
	}

	var services []protocol.Service
	seen := make(map[int]struct{})

	for _, c := range containers {
		name := containerName(c)
		for _, p := range c.Ports {
			if p.PublicPort == 0 || p.Type != "tcp" {
				continue
			}
			port := int(p.PublicPort)
			// Docker lists a binding once per address family.
			if _, dup := seen[port]; dup {
				continue
			}
			seen[port] = struct{}{}

			services = append(services, protocol.Service{
				Name: fmt.Sprintf("%s/%d", name, p.PrivatePort),
				Port: port,
			})
		}
	}

	return services, nil
}

func containerName(c container.Summary) string {
	if len(c.Names) > 0 {
		return strings.TrimPrefix(c.Names[0], "/")
	}
	id := c.ID
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}
