package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackzampolin/medlens/internal/prompts/reanalysis"
	"github.com/jackzampolin/medlens/internal/report"
)

var errNoGenerator = errors.New("no reasoning service configured")

// Reanalyze regenerates the derived fields (status, insight, summary,
// recommendations) of a user-corrected record. It never fails: when the
// service errors or its reply is unusable, a copy of corrected is returned
// unchanged.
//
// The user's edits always win. Output tests are the input tests in input
// order with name, value, unit and range untouched. Status and insight come
// from the matching service test; its range only fills a missing one.
func (a *Analyzer) Reanalyze(ctx context.Context, corrected report.MedicalReport) *report.MedicalReport {
	input := corrected.Clone()

	svc, err := a.rescore(ctx, input)
	if err != nil {
		a.logger.Warn("reanalysis failed, returning corrected input", "error", err)
		return input
	}

	out := merge(input, svc)
	report.Canonicalize(out)
	a.logger.Info("reanalysis complete", "tests", len(out.Tests), "abnormal", out.AbnormalCount())
	return out
}

func (a *Analyzer) rescore(ctx context.Context, input *report.MedicalReport) (*report.MedicalReport, error) {
	if a.generator == nil {
		return nil, errNoGenerator
	}

	payload := input.Clone()
	payload.IsMedicalReport = true
	payload.Error = ""
	recordJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	prompt, err := reanalysis.Prompt(string(recordJSON))
	if err != nil {
		return nil, err
	}

	raw, err := a.generator.Generate(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}
	svc, err := report.Decode(raw)
	if err != nil {
		return nil, err
	}
	if svc.Rejected() {
		return nil, errors.New("service rejected the record: " + svc.Error)
	}
	return svc, nil
}

// merge applies the service's derived fields onto a copy of input.
func merge(input, svc *report.MedicalReport) *report.MedicalReport {
	out := input.Clone()
	out.IsMedicalReport = true
	out.Error = ""

	used := make([]bool, len(svc.Tests))
	for i := range out.Tests {
		j := matchTest(out.Tests, svc.Tests, used, i)
		if j < 0 {
			continue
		}
		used[j] = true

		st := svc.Tests[j]
		status, ok := report.ParseStatus(string(st.Status))
		if !ok {
			continue
		}
		out.Tests[i].Status = status
		out.Tests[i].Insight = nil
		if st.Insight != nil {
			insight := *st.Insight
			out.Tests[i].Insight = &insight
		}
		if missing(out.Tests[i].Range) && !missing(st.Range) {
			out.Tests[i].Range = st.Range
		}
	}

	if strings.TrimSpace(out.PatientName) == "" {
		out.PatientName = svc.PatientName
	}
	if strings.TrimSpace(out.Date) == "" {
		out.Date = svc.Date
	}
	if strings.TrimSpace(svc.Summary) != "" {
		out.Summary = svc.Summary
	}
	if len(svc.Recommendations) > 0 {
		out.Recommendations = append([]string(nil), svc.Recommendations...)
	}
	return out
}

// matchTest finds the service test for input test i: same position and name,
// then the first unused test with that name, then same position when both
// lists have equal length. It returns -1 when nothing matches.
func matchTest(in, svc []report.TestResult, used []bool, i int) int {
	name := in[i].Name
	if i < len(svc) && !used[i] && sameName(svc[i].Name, name) {
		return i
	}
	for j := range svc {
		if !used[j] && sameName(svc[j].Name, name) {
			return j
		}
	}
	if len(in) == len(svc) && !used[i] {
		return i
	}
	return -1
}

func missing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, report.NotAvailable)
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
