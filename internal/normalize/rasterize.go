package normalize

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Rasterizer renders one page of a PDF to a PNG file inside outDir and
// returns the file path. Pages are 1-indexed.
type Rasterizer interface {
	RasterizePage(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error)
	Name() string
}

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

const outputPrefix = "page"

// pdftoppmArgs renders exactly one page:
//
//	-png           PNG output
//	-f N -l N      first and last page
//	-r DPI         resolution
//	-singlefile    no page-number suffix, output is <prefix>.png
func pdftoppmArgs(pdfPath string, page, dpi int, prefix string) []string {
	p := strconv.Itoa(page)
	return []string{
		"-png",
		"-f", p,
		"-l", p,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		pdfPath,
		prefix,
	}
}

// PdftoppmRasterizer renders pages with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	binary string
	runner Runner
}

// NewPdftoppm creates a rasterizer. An empty binary means "pdftoppm" on PATH;
// a nil runner means ExecRunner.
func NewPdftoppm(binary string, runner Runner) *PdftoppmRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdftoppmRasterizer{binary: binary, runner: runner}
}

func (r *PdftoppmRasterizer) Name() string { return "exec" }

func (r *PdftoppmRasterizer) RasterizePage(ctx context.Context, pdfPath string, page, dpi int, outDir string) (string, error) {
	prefix := filepath.Join(outDir, outputPrefix)
	output, err := r.runner.Run(ctx, r.binary, pdftoppmArgs(pdfPath, page, dpi, prefix)...)
	if err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	pngPath := prefix + ".png"
	if _, err := os.Stat(pngPath); err != nil {
		return "", fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return pngPath, nil
}
