package normalize

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	ErrNoPages   = errors.New("PDF has no pages")
	ErrEncrypted = errors.New("PDF is encrypted")
)

func init() {
	// pdfcpu otherwise installs a config directory under the user's home.
	api.DisableConfigDir()
}

// inspectPDF structurally validates the document and returns its page count.
func inspectPDF(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if ctx.Encrypt != nil {
		return 0, ErrEncrypted
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, fmt.Errorf("invalid PDF: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, ErrNoPages
	}
	return ctx.PageCount, nil
}
