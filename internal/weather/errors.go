package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies upstream failures. Callers never see raw transport errors.
type ErrorKind string

const (
	KindNetwork   ErrorKind = "NETWORK"
	KindAPIKey    ErrorKind = "API_KEY"
	KindRateLimit ErrorKind = "RATE_LIMIT"
	KindNotFound  ErrorKind = "NOT_FOUND"
	KindHTTP      ErrorKind = "HTTP"
)

var (
	ErrInvalidUnits  = errors.New("invalid units")
	ErrNoLocation    = errors.New("no location selected")
	ErrSuperseded    = errors.New("refresh superseded by a newer request")
	ErrQueryTooShort = errors.New("query must be at least 2 characters")
)

// FetchError is a classified upstream failure.
type FetchError struct {
	Kind   ErrorKind
	Status int    // HTTP status, 0 for transport failures
	Body   string // response body, if any
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the kind of a classified error. Anything unclassified is a
// network failure.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}

// Advisory returns the banner text shown for a failed refresh.
func Advisory(kind ErrorKind) string {
	switch kind {
	case KindNetwork:
		return "⚠️ Network error. Check your internet connection."
	case KindAPIKey:
		return "🔑 API key invalid or not activated."
	case KindRateLimit:
		return "⏱️ Too many requests. Please wait a bit and try again."
	case KindNotFound:
		return "🏙️ City not found. Try another name."
	default:
		return "⚠️ Failed to load weather. Try again later."
	}
}

// AdvisoryFor is Advisory(KindOf(err)).
func AdvisoryFor(err error) string {
	return Advisory(KindOf(err))
}
