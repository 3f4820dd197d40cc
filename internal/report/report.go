// Package report defines the structured record extracted from a medical
// document and the decoder that recovers it from free-form model output.
package report

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NotAvailable marks a field the source document does not show legibly.
const NotAvailable = "N/A"

// Status is the classification of a single result against its reference range.
type Status string

const (
	StatusNormal Status = "Normal"
	StatusHigh   Status = "High"
	StatusLow    Status = "Low"
)

// ParseStatus maps a status string to its canonical form, ignoring case and
// surrounding whitespace. The second return is false for anything outside
// Normal/High/Low.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return StatusNormal, true
	case "high":
		return StatusHigh, true
	case "low":
		return StatusLow, true
	default:
		return Status(s), false
	}
}

// Valid reports whether s is one of the three canonical statuses.
func (s Status) Valid() bool {
	return s == StatusNormal || s == StatusHigh || s == StatusLow
}

// Abnormal is true for High and Low.
func (s Status) Abnormal() bool {
	return s == StatusHigh || s == StatusLow
}

// TestResult is one row of a lab report. Values, units and ranges stay raw
// strings because source documents use inconsistent notations.
type TestResult struct {
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Unit    string  `json:"unit"`
	Range   string  `json:"range"`
	Status  Status  `json:"status"`
	Insight *string `json:"insight"`
}

// UnmarshalJSON accepts numbers and booleans where strings are expected and
// keeps their literal text, so `"value": 250` decodes as "250".
func (t *TestResult) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name    json.RawMessage `json:"name"`
		Value   json.RawMessage `json:"value"`
		Unit    json.RawMessage `json:"unit"`
		Range   json.RawMessage `json:"range"`
		Status  json.RawMessage `json:"status"`
		Insight json.RawMessage `json:"insight"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if t.Name, err = scalarText(aux.Name); err != nil {
		return err
	}
	if t.Value, err = scalarText(aux.Value); err != nil {
		return err
	}
	if t.Unit, err = scalarText(aux.Unit); err != nil {
		return err
	}
	if t.Range, err = scalarText(aux.Range); err != nil {
		return err
	}
	status, err := scalarText(aux.Status)
	if err != nil {
		return err
	}
	t.Status = Status(status)

	t.Insight = nil
	if len(aux.Insight) > 0 && !isNull(aux.Insight) {
		insight, err := scalarText(aux.Insight)
		if err != nil {
			return err
		}
		t.Insight = &insight
	}
	return nil
}

// scalarText renders a JSON scalar as text. Strings are unquoted, null and
// absent become "", anything else keeps its compact JSON form.
func scalarText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// MedicalReport is the top-level structured record. When IsMedicalReport is
// false the record carries only Error.
type MedicalReport struct {
	IsMedicalReport bool         `json:"is_medical_report"`
	Error           string       `json:"error,omitempty"`
	PatientName     string       `json:"patient_name,omitempty"`
	Date            string       `json:"date,omitempty"`
	Summary         string       `json:"summary"`
	Recommendations []string     `json:"recommendations"`
	Tests           []TestResult `json:"tests"`
}

// UnmarshalJSON decodes text fields as leniently as TestResult does. A
// missing or unreadable is_medical_report counts as a report, so only an
// explicit false rejects. A lone recommendation string becomes a one-item list.
func (r *MedicalReport) UnmarshalJSON(data []byte) error {
	var aux struct {
		IsMedicalReport json.RawMessage `json:"is_medical_report"`
		Error           json.RawMessage `json:"error"`
		PatientName     json.RawMessage `json:"patient_name"`
		Date            json.RawMessage `json:"date"`
		Summary         json.RawMessage `json:"summary"`
		Recommendations json.RawMessage `json:"recommendations"`
		Tests           []TestResult    `json:"tests"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	out := MedicalReport{IsMedicalReport: discriminant(aux.IsMedicalReport), Tests: aux.Tests}
	var err error
	if out.Error, err = scalarText(aux.Error); err != nil {
		return err
	}
	if out.PatientName, err = scalarText(aux.PatientName); err != nil {
		return err
	}
	if out.Date, err = scalarText(aux.Date); err != nil {
		return err
	}
	if out.Summary, err = scalarText(aux.Summary); err != nil {
		return err
	}
	if out.Recommendations, err = textList(aux.Recommendations); err != nil {
		return err
	}
	*r = out
	return nil
}

// discriminant reads is_medical_report. Booleans, "true"/"false" strings and
// 0/1 are honored; anything else, including absent and null, is true.
func discriminant(raw json.RawMessage) bool {
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(raw)), `"`)) {
	case "false", "0":
		return false
	default:
		return true
	}
}

// textList decodes an array of scalars, or a single scalar, into strings.
// Null and empty items are dropped.
func textList(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	if raw[0] != '[' {
		s, err := scalarText(raw)
		if err != nil || s == "" {
			return nil, err
		}
		return []string{s}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := scalarText(item)
		if err != nil {
			return nil, err
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// NotAReport builds the rejection outcome for a document that is not a
// medical report.
func NotAReport(message string) *MedicalReport {
	return &MedicalReport{IsMedicalReport: false, Error: message}
}

// Rejected is true for the not-a-report outcome.
func (r *MedicalReport) Rejected() bool {
	return !r.IsMedicalReport && r.Error != ""
}

// MarshalJSON writes rejected records as exactly is_medical_report and error.
// Reports always carry tests and recommendations arrays, empty when unset.
func (r MedicalReport) MarshalJSON() ([]byte, error) {
	if r.Rejected() {
		return json.Marshal(struct {
			IsMedicalReport bool   `json:"is_medical_report"`
			Error           string `json:"error"`
		}{r.IsMedicalReport, r.Error})
	}

	type plain MedicalReport
	p := plain(r)
	p.Error = ""
	if p.Tests == nil {
		p.Tests = []TestResult{}
	}
	if p.Recommendations == nil {
		p.Recommendations = []string{}
	}
	return json.Marshal(p)
}

// Clone returns a deep copy.
func (r *MedicalReport) Clone() *MedicalReport {
	if r == nil {
		return nil
	}
	out := *r
	if r.Recommendations != nil {
		out.Recommendations = append([]string(nil), r.Recommendations...)
	}
	if r.Tests != nil {
		out.Tests = make([]TestResult, len(r.Tests))
		for i, t := range r.Tests {
			out.Tests[i] = t
			if t.Insight != nil {
				insight := *t.Insight
				out.Tests[i].Insight = &insight
			}
		}
	}
	return &out
}

// AbnormalCount returns how many tests are flagged High or Low.
func (r *MedicalReport) AbnormalCount() int {
	n := 0
	for _, t := range r.Tests {
		if t.Status.Abnormal() {
			n++
		}
	}
	return n
}
