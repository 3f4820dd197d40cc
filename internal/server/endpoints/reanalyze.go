package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/report"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

// MsgNoData is returned when the reanalysis body is missing or empty.
const MsgNoData = "No data provided"

// maxRecordBytes bounds a reanalysis body. Records are a few KB.
const maxRecordBytes = 1 << 20

// ReanalyzeEndpoint handles POST /api/reanalyze.
type ReanalyzeEndpoint struct{}

var _ api.Endpoint = (*ReanalyzeEndpoint)(nil)

func (e *ReanalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reanalyze", e.handler
}

// RequiresProvider is false: without a provider the corrected record is
// returned as sent.
func (e *ReanalyzeEndpoint) RequiresProvider() bool { return false }

// handler godoc
//
//	@Summary		Reanalyze a corrected record
//	@Description	Recompute status, insights, summary and recommendations after user edits.
//	@Description	User-edited names, values, units and ranges are never changed. If the service fails the record is returned unchanged.
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			record	body		report.MedicalReport	true	"Corrected record"
//	@Success		200		{object}	report.MedicalReport
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/reanalyze [post]
func (e *ReanalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRecordBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "record too large")
		return
	}

	rec, err := decodeRecord(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if timeout := svcctx.ConfigFrom(ctx).Server.AnalysisTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	writeJSON(w, http.StatusOK, NewAnalyzer(ctx).Reanalyze(ctx, *rec))
}

func (e *ReanalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze <record.json|->",
		Short: "Rescore a corrected record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := ReadRecord(args[0])
			if err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var out report.MedicalReport
			if err := client.Post(cmd.Context(), "/api/reanalyze", in, &out); err != nil {
				return err
			}
			return api.Output(out)
		},
	}
}

// decodeRecord rejects empty bodies, null and {} with MsgNoData.
func decodeRecord(body []byte) (*report.MedicalReport, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, errors.New(MsgNoData)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("invalid record: %v", err)
	}
	if len(fields) == 0 {
		return nil, errors.New(MsgNoData)
	}
	var rec report.MedicalReport
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("invalid record: %v", err)
	}
	return &rec, nil
}

// ReadRecord loads a record from a file, or stdin for "-".
func ReadRecord(path string) (*report.MedicalReport, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return decodeRecord(data)
}
