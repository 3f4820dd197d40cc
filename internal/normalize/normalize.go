// Package normalize turns an uploaded document (raster image or PDF) into the
// single raster image sent to the reasoning service.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// MIME types understood by the normalizer.
const (
	MIMEPDF  = "application/pdf"
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
	MIMEWEBP = "image/webp"
	MIMEBMP  = "image/bmp"
	MIMETIFF = "image/tiff"
)

// DefaultDPI is the rasterization resolution for PDF pages. Lower values are
// raised to it; smaller text stops being legible to vision models.
const DefaultDPI = 300

// Kind classifies a normalization failure.
type Kind string

const (
	KindUnreadableDocument Kind = "unreadable_document"
	KindInvalidImage       Kind = "invalid_image"
)

// Failure is the only error type Normalize returns for document problems.
type Failure struct {
	Kind Kind
	Path string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Kind, filepath.Base(f.Path), f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Image is a normalized raster ready for the reasoning service.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
	Source string // original document path
	Page   int    // 1 for rasterized PDFs, 0 for images used as-is
}

// Config configures a Normalizer.
type Config struct {
	// Rasterizer renders PDF pages. Defaults to pdftoppm on PATH.
	Rasterizer Rasterizer
	// DPI for PDF rasterization (minimum and default 300).
	DPI int
	// ScratchDir is the parent for per-call temp directories. Defaults to os.TempDir().
	ScratchDir string
	Logger     *slog.Logger
}

// Normalizer converts documents into images. It holds no per-call state and
// is safe for concurrent use.
type Normalizer struct {
	rasterizer Rasterizer
	dpi        int
	scratchDir string
	logger     *slog.Logger
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	if cfg.Rasterizer == nil {
		cfg.Rasterizer = NewPdftoppm("", nil)
	}
	if cfg.DPI < DefaultDPI {
		cfg.DPI = DefaultDPI
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Normalizer{
		rasterizer: cfg.Rasterizer,
		dpi:        cfg.DPI,
		scratchDir: cfg.ScratchDir,
		logger:     cfg.Logger,
	}
}

// Rasterizer returns the configured PDF rasterizer.
func (n *Normalizer) Rasterizer() Rasterizer {
	return n.rasterizer
}

// Normalize reads the document at path and returns a single image. An empty
// declaredMIME is inferred from the file extension. Document problems are
// returned as *Failure; context cancellation is returned as ctx.Err().
func (n *Normalizer) Normalize(ctx context.Context, path, declaredMIME string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mimeType := canonicalMIME(declaredMIME)
	if mimeType == "" {
		mimeType = InferMIME(path)
	}

	if mimeType == MIMEPDF {
		return n.normalizePDF(ctx, path)
	}
	return n.normalizeImage(path)
}

func (n *Normalizer) normalizePDF(ctx context.Context, path string) (*Image, error) {
	pages, err := inspectPDF(path)
	if err != nil {
		return nil, &Failure{Kind: KindUnreadableDocument, Path: path, Err: err}
	}

	tmpDir, err := os.MkdirTemp(n.scratchDir, "medlens-raster-*")
	if err != nil {
		return nil, &Failure{Kind: KindUnreadableDocument, Path: path, Err: fmt.Errorf("failed to create temp dir: %w", err)}
	}
	defer os.RemoveAll(tmpDir)

	pngPath, err := n.rasterizer.RasterizePage(ctx, path, 1, n.dpi, tmpDir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Failure{Kind: KindUnreadableDocument, Path: path, Err: err}
	}

	data, err := os.ReadFile(pngPath)
	if err != nil {
		return nil, &Failure{Kind: KindUnreadableDocument, Path: path, Err: fmt.Errorf("failed to read rendered page: %w", err)}
	}

	info, err := verifyImage(data)
	if err != nil {
		return nil, &Failure{Kind: KindUnreadableDocument, Path: path, Err: fmt.Errorf("rendered page is not a valid image: %w", err)}
	}

	n.logger.Debug("rasterized PDF",
		"file", filepath.Base(path),
		"pages", pages,
		"dpi", n.dpi,
		"rasterizer", n.rasterizer.Name(),
		"width", info.width,
		"height", info.height,
	)

	return &Image{
		Data:   data,
		MIME:   info.mime,
		Width:  info.width,
		Height: info.height,
		Source: path,
		Page:   1,
	}, nil
}

func (n *Normalizer) normalizeImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Failure{Kind: KindInvalidImage, Path: path, Err: err}
	}

	info, err := verifyImage(data)
	if err != nil {
		return nil, &Failure{Kind: KindInvalidImage, Path: path, Err: err}
	}

	return &Image{
		Data:   data,
		MIME:   info.mime,
		Width:  info.width,
		Height: info.height,
		Source: path,
	}, nil
}

// InferMIME maps a filename extension to a MIME type, falling back to JPEG.
func InferMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MIMEPDF
	case ".png":
		return MIMEPNG
	case ".gif":
		return MIMEGIF
	case ".webp":
		return MIMEWEBP
	case ".bmp":
		return MIMEBMP
	case ".tif", ".tiff":
		return MIMETIFF
	default:
		return MIMEJPEG
	}
}

// canonicalMIME strips parameters and treats generic binary types as absent.
func canonicalMIME(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = strings.ToLower(declared)
	}
	switch mediaType {
	case "application/octet-stream", "binary/octet-stream":
		return ""
	case "image/jpg", "image/pjpeg":
		return MIMEJPEG
	case "application/x-pdf":
		return MIMEPDF
	}
	return mediaType
}
