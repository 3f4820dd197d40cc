package endpoints

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/report"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

// Upload validation messages.
const (
	MsgNoFilePart   = "No file part"
	MsgNoSelected   = "No selected file"
	MsgAllowedTypes = "Images and PDFs only!"
)

// allowedExtensions are the upload types accepted by /api/analyze.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// multipartOverhead is slack for boundaries and headers on top of the file limit.
const multipartOverhead = 1 << 20

// AnalyzeEndpoint handles POST /api/analyze.
type AnalyzeEndpoint struct{}

var _ api.Endpoint = (*AnalyzeEndpoint)(nil)

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/analyze", e.handler
}

func (e *AnalyzeEndpoint) RequiresProvider() bool { return true }

// handler godoc
//
//	@Summary		Analyze a medical document
//	@Description	Extract a structured record from an uploaded lab report image or PDF.
//	@Description	Documents that are not medical reports return is_medical_report false with an error message.
//	@Tags			analysis
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"JPEG, PNG or PDF (first page is analyzed)"
//	@Success		200		{object}	report.MedicalReport
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/analyze [post]
func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := svcctx.ConfigFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)
	limit := cfg.Server.MaxUploadBytes()
	tooLarge := fmt.Sprintf("File too large. Maximum size is %dMB.", cfg.Server.MaxUploadMB)

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		case errors.Is(err, http.ErrMissingFile):
			writeError(w, http.StatusBadRequest, MsgNoFilePart)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		}
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, MsgNoSelected)
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, MsgAllowedTypes)
		return
	}
	if header.Size > limit {
		writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}

	dir, err := scratchDir(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create temp dir: %v", err))
		return
	}
	defer os.RemoveAll(dir)

	// The client's filename is never used as a path.
	path := filepath.Join(dir, "document"+ext)
	if err := saveUpload(file, path); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save file: %v", err))
		return
	}

	if timeout := cfg.Server.AnalysisTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Info("analyzing upload", "file", header.Filename, "size", header.Size)
	rec, err := NewAnalyzer(ctx).Analyze(ctx, path, declaredMIME(header.Header.Get("Content-Type")))
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *AnalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Upload a document for analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if mimeType == "" {
				mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0])))
			}
			var rec report.MedicalReport
			if err := client.PostFile(cmd.Context(), "/api/analyze", "file", args[0], mimeType, &rec); err != nil {
				return err
			}
			return api.Output(rec)
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "Declared MIME type (default: from extension)")
	return cmd
}

// AnalysisStatus maps an analysis failure to its HTTP status.
func AnalysisStatus(err error) int {
	switch analysis.KindOf(err) {
	case analysis.KindUnreadableDocument, analysis.KindInvalidImage:
		return http.StatusUnprocessableEntity
	case analysis.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case analysis.KindDecodeFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeAnalysisError(w http.ResponseWriter, err error) {
	var ae *analysis.Error
	if errors.As(err, &ae) {
		writeError(w, AnalysisStatus(err), ae.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// declaredMIME drops content types that carry no information.
func declaredMIME(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

func scratchDir(ctx context.Context) (string, error) {
	if h := svcctx.HomeFrom(ctx); h != nil {
		return h.TempDir("upload-*")
	}
	return os.MkdirTemp("", "medlens-upload-*")
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
