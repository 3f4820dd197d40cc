package report

import "strings"

// Canonicalize enforces the record invariants in place and returns r:
//   - a rejected record keeps only its error
//   - statuses are mapped to Normal/High/Low regardless of case
//   - Normal results carry no insight, and blank insights are nil
//
// Statuses outside the three values are left as the service sent them.
func Canonicalize(r *MedicalReport) *MedicalReport {
	if r == nil {
		return nil
	}
	if r.Rejected() {
		*r = MedicalReport{IsMedicalReport: false, Error: strings.TrimSpace(r.Error)}
		return r
	}

	r.PatientName = strings.TrimSpace(r.PatientName)
	r.Date = strings.TrimSpace(r.Date)

	for i := range r.Tests {
		t := &r.Tests[i]
		if s, ok := ParseStatus(string(t.Status)); ok {
			t.Status = s
		}
		if t.Insight != nil && strings.TrimSpace(*t.Insight) == "" {
			t.Insight = nil
		}
		if t.Status == StatusNormal {
			t.Insight = nil
		}
	}
	return r
}
