package bill

import (
	"errors"
	"strings"
)

// Store failures surfaced to the user. The error text is the display text:
// the UI shows these messages verbatim under a generic "Erreur" heading.
var (
	ErrNotFound    = errors.New("Erreur 404")
	ErrServerError = errors.New("Erreur 500")
)

// FailureKind classifies a store rejection.
type FailureKind int

const (
	FailureGeneric FailureKind = iota
	FailureNotFound
	FailureServer
)

// ClassifyFailure maps a store error to its kind. Wrapped sentinels are
// preferred; otherwise the message content decides, matching how the backend
// reports "Erreur 404" and "Erreur 500".
func ClassifyFailure(err error) FailureKind {
	switch {
	case err == nil:
		return FailureGeneric
	case errors.Is(err, ErrNotFound):
		return FailureNotFound
	case errors.Is(err, ErrServerError):
		return FailureServer
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return FailureNotFound
	case strings.Contains(msg, "500"):
		return FailureServer
	default:
		return FailureGeneric
	}
}

// FailureMessage returns the text displayed for a store failure. Sentinel
// failures keep their exact French message even when wrapped with context.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrServerError):
		return ErrServerError.Error()
	default:
		return err.Error()
	}
}
