package normalize

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
)

const (
	DefaultDockerImage = "minidocks/poppler:latest"
	DockerLabel        = "medlens-raster"

	containerInput  = "/input/document.pdf"
	containerOutput = "/output"
)

// DockerConfig configures the container rasterizer.
type DockerConfig struct {
	Image string
	// Labels are added to every raster container
	Labels map[string]string
	Logger *slog.Logger
}

// DockerRasterizer runs pdftoppm inside a throwaway poppler container, for
// hosts without poppler installed. The document is bind-mounted read-only and
// the container has no network.
type DockerRasterizer struct {
	cli    *client.Client
	image  string
	labels map[string]string
	logger *slog.Logger
}

// NewDockerRasterizer connects to the Docker daemon from the environment.
func NewDockerRasterizer(cfg DockerConfig) (*DockerRasterizer, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	if cfg.Image == "" {
		cfg.Image = DefaultDockerImage
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	labels := map[string]string{DockerLabel: "true"}
	for k, v := range cfg.Labels {
		labels[k] = v
	}
	return &DockerRasterizer{cli: cli, image: cfg.Image, labels: labels, logger: cfg.Logger}, nil
}

func (d *DockerRasterizer) Name() string { return "docker" }

// Close closes the Docker client.
func (d *DockerRasterizer) Close() error {
	return d.cli.Close()
}

func (d *DockerRasterizer) RasterizePage(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error) {
	absPDF, err := filepath.Abs(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve PDF path: %w", err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output dir: %w", err)
	}

	if _, err := d.cli.Ping(ctx); err != nil {
		return "", fmt.Errorf("docker is not running: %w", err)
	}
	if err := d.ensureImage(ctx); err != nil {
		return "", err
	}

	cmd := append([]string{"pdftoppm"}, pdftoppmArgs(containerInput, page, dpi, containerOutput+"/"+outputPrefix)...)
	containerConfig := &container.Config{
		Image:      d.image,
		Entrypoint: []string{},
		Cmd:        cmd,
		Labels:     d.labels,
	}
	hostConfig := &container.HostConfig{
		NetworkMode: "none",
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: absPDF, Target: containerInput, ReadOnly: true},
			{Type: mount.TypeBind, Source: absOut, Target: containerOutput},
		},
	}

	resp, err := d.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		// Use a fresh context so cleanup still runs after cancellation.
		if err := d.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true}); err != nil {
			d.logger.Warn("failed to remove raster container", "id", resp.ID, "error", err)
		}
	}()

	if err := d.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := d.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("failed waiting for container: %w", err)
		}
	case status := <-statusCh:
		if status.Error != nil {
			return "", fmt.Errorf("container wait error: %s", status.Error.Message)
		}
		if status.StatusCode != 0 {
			return "", fmt.Errorf("pdftoppm exited with status %d: %s", status.StatusCode, d.logs(ctx, resp.ID))
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return filepath.Join(absOut, outputPrefix+".png"), nil
}

func (d *DockerRasterizer) logs(ctx context.Context, id string) string {
	rc, err := d.cli.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true, Tail: "20"})
	if err != nil {
		return ""
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ensureImage pulls the poppler image if not present.
func (d *DockerRasterizer) ensureImage(ctx context.Context) error {
	if _, err := d.cli.ImageInspect(ctx, d.image); err == nil {
		return nil
	}

	d.logger.Info("pulling raster image", "image", d.image)
	reader, err := d.cli.ImagePull(ctx, d.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

var _ Rasterizer = (*DockerRasterizer)(nil)
var _ Rasterizer = (*PdftoppmRasterizer)(nil)
