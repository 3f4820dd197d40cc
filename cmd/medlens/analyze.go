package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/server/endpoints"
)

var analyzeMIME string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract a record from a lab report image or PDF",
	Long: `Analyze a document in-process, without a running server.

JPEG, PNG, GIF, WebP, BMP and TIFF images are sent as-is. For PDFs only the
first page is rasterized and analyzed.

Examples:
  medlens analyze report.pdf
  medlens analyze photo.jpg -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup, err := withLocalServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := endpoints.NewAnalyzer(ctx).Analyze(ctx, args[0], analyzeMIME)
		if err != nil {
			return userError(err)
		}
		return api.Output(rec)
	},
}

var reanalyzeCmd = &cobra.Command{
	Use:   "reanalyze <record.json|->",
	Short: "Rescore a corrected record",
	Long: `Recompute statuses, insights, summary and recommendations for an edited
record. Names, values, units and ranges are kept as given. If the service
fails the record is printed unchanged.

Examples:
  medlens reanalyze corrected.json
  medlens analyze report.pdf | medlens reanalyze -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := endpoints.ReadRecord(args[0])
		if err != nil {
			return err
		}

		ctx, cleanup, err := withLocalServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		return api.Output(endpoints.NewAnalyzer(ctx).Reanalyze(ctx, *rec))
	},
}

// userError replaces an analysis failure with its end-user message and the
// exit status for its kind.
func userError(err error) error {
	var ae *analysis.Error
	if !errors.As(err, &ae) || ae.Message == "" {
		return err
	}
	code := exitFailure
	switch ae.Kind {
	case analysis.KindUnreadableDocument, analysis.KindInvalidImage:
		code = exitBadDocument
	case analysis.KindServiceUnavailable:
		code = exitUnavailable
	}
	return &exitError{msg: ae.Message, code: code}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeMIME, "mime", "", "Declared MIME type (default: from extension)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reanalyzeCmd)
}
