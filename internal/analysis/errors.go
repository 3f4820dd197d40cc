package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackzampolin/medlens/internal/normalize"
)

// Kind classifies an analysis failure.
type Kind string

const (
	KindUnreadableDocument Kind = "unreadable_document"
	KindInvalidImage       Kind = "invalid_image"
	KindServiceUnavailable Kind = "service_unavailable"
	KindDecodeFailure      Kind = "decode_failure"
)

// User-facing messages per failure kind.
const (
	MsgUnreadableDocument = "Could not read PDF content. It might be corrupted or password protected."
	MsgInvalidImage       = "Invalid or corrupted image file."
	MsgServiceUnavailable = "The analysis service is unavailable. Please try again later."
	MsgTimedOut           = "The analysis timed out. Please try again later."
	MsgDecodeFailure      = "AI analysis failed to produce valid data. Please try again."
)

// Error is returned by Analyze. Message is safe to show to end users; Err
// carries the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of an analysis error, or "" for anything else.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func newError(kind Kind, err error) *Error {
	msg := ""
	switch kind {
	case KindUnreadableDocument:
		msg = MsgUnreadableDocument
	case KindInvalidImage:
		msg = MsgInvalidImage
	case KindServiceUnavailable:
		msg = MsgServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			msg = MsgTimedOut
		}
	case KindDecodeFailure:
		msg = MsgDecodeFailure
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// normalizeError maps normalizer failures onto the analysis taxonomy.
// Cancellation and anything unexpected count as the service being unavailable.
func normalizeError(err error) *Error {
	var f *normalize.Failure
	if errors.As(err, &f) {
		switch f.Kind {
		case normalize.KindUnreadableDocument:
			return newError(KindUnreadableDocument, err)
		case normalize.KindInvalidImage:
			return newError(KindInvalidImage, err)
		}
	}
	return newError(KindServiceUnavailable, err)
}
