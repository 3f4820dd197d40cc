package normalize

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// maxPixels bounds the decoded size of an upload.
const maxPixels = 200_000_000

var formatMIME = map[string]string{
	"jpeg": MIMEJPEG,
	"png":  MIMEPNG,
	"gif":  MIMEGIF,
	"webp": MIMEWEBP,
	"bmp":  MIMEBMP,
	"tiff": MIMETIFF,
}

type imageInfo struct {
	mime   string
	width  int
	height int
}

// verifyImage decodes the full image so truncated or corrupted data is
// rejected, not just data with a wrong header.
func verifyImage(data []byte) (imageInfo, error) {
	if len(data) == 0 {
		return imageInfo{}, fmt.Errorf("empty image")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageInfo{}, fmt.Errorf("unrecognized image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return imageInfo{}, fmt.Errorf("image has no pixels (%dx%d)", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return imageInfo{}, fmt.Errorf("image too large (%dx%d)", cfg.Width, cfg.Height)
	}
	mimeType, ok := formatMIME[format]
	if !ok {
		return imageInfo{}, fmt.Errorf("unsupported image format %q", format)
	}

	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return imageInfo{}, fmt.Errorf("corrupted %s image: %w", format, err)
	}

	return imageInfo{mime: mimeType, width: cfg.Width, height: cfg.Height}, nil
}
