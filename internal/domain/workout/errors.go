package workout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies plan-generation failures.
type ErrorKind string

const (
	KindMalformedResponse   ErrorKind = "malformed_response"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindUpstreamError       ErrorKind = "upstream_error"
	KindInvariantViolation  ErrorKind = "invariant_violation"
	KindPersistenceFailure  ErrorKind = "persistence_failure"
	KindInternal            ErrorKind = "internal"
)

// UnavailableMessage is what callers see when the generative service cannot be reached.
const UnavailableMessage = "The AI service is currently unavailable. Please try again later."

type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Kind)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Kind)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind ErrorKind, op, message string, cause error) error {
	return &Error{
		Kind:    kind,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with a kind. Errors that already carry a kind keep it.
func Wrap(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return NewError(kind, op, err.Error(), err)
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind carried by err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var werr *Error
	if !errors.As(err, &werr) {
		return KindInternal
	}
	return werr.Kind
}

// Describe renders err for a terminal job payload. Unavailability keeps the
// user-facing wording and generation failures carry the service prefix.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindUpstreamUnavailable:
		return UnavailableMessage
	case KindPersistenceFailure, KindInternal:
		return err.Error()
	default:
		return "AI Service Error: " + err.Error()
	}
}
