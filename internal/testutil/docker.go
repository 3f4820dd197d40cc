package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// CleanupLabel marks containers started by a test. Its value is the test
// name, so parallel tests only remove their own containers.
const CleanupLabel = "medlens-test"

// TestingT is the subset of testing.T used for Docker setup.
type TestingT interface {
	Name() string
	Cleanup(func())
	Logf(format string, args ...any)
	Skipf(format string, args ...any)
	Helper()
}

// DockerClient returns a client for the local daemon and removes any
// container labeled for this test when the test ends. The test is skipped
// when no daemon is reachable.
func DockerClient(t TestingT) *client.Client {
	t.Helper()

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		t.Skipf("docker is not running: %v", err)
		return nil
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		removed, err := RemoveLabeled(ctx, cli, CleanupLabel+"="+t.Name())
		if err != nil {
			t.Logf("container cleanup: %v", err)
		}
		for _, name := range removed {
			t.Logf("removed leftover container %s", name)
		}
		cli.Close()
	})

	return cli
}

// ContainerLabels returns the labels that tie a container to t.
func ContainerLabels(t TestingT) map[string]string {
	return map[string]string{CleanupLabel: t.Name()}
}

// RemoveLabeled force-removes every container matching the label filter
// ("key" or "key=value") and returns the names it removed.
func RemoveLabeled(ctx context.Context, cli *client.Client, label string) ([]string, error) {
	list, err := cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", label)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	var removed []string
	for _, c := range list {
		name := c.ID[:12]
		if len(c.Names) > 0 {
			name = c.Names[0]
		}
		if err := cli.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true, RemoveVolumes: true}); err != nil {
			return removed, fmt.Errorf("failed to remove container %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
