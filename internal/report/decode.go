package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ReasonInvalidJSON is the DecodeError reason when no JSON value could be parsed.
const ReasonInvalidJSON = "invalid_json"

var errNotObject = errors.New("payload is not a JSON object")

// DecodeError is returned when a model reply does not contain a parseable
// JSON payload. Raw keeps the reply verbatim for logging.
type DecodeError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed (%s)", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Candidate returns the span from the first '{' to the last '}' of raw, or
// raw unchanged when there is no such span. The span is greedy: prose that
// contains braces around the payload will be captured with it.
func Candidate(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return raw
	}
	return raw[start : end+1]
}

// DecodeInto parses the JSON candidate of raw into v.
func DecodeInto(raw string, v any) error {
	if err := json.Unmarshal([]byte(Candidate(raw)), v); err != nil {
		return &DecodeError{Reason: ReasonInvalidJSON, Raw: raw, Err: err}
	}
	return nil
}

// Decode recovers a MedicalReport from a model reply. The parsed object is
// trusted structurally; use Check for schema conformance.
func Decode(raw string) (*MedicalReport, error) {
	if !strings.HasPrefix(strings.TrimSpace(Candidate(raw)), "{") {
		return nil, &DecodeError{Reason: ReasonInvalidJSON, Raw: raw, Err: errNotObject}
	}
	var r MedicalReport
	if err := DecodeInto(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
