package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jukebot/pkg/types"
)

// retryIndicators mark extraction failures worth retrying: throttling,
// age gates, and signature/extractor breakage a later attempt may get past.
var retryIndicators = []string{
	"429", "throttle", "quota", "sign in", "sign-in", "age", "signature", "extractor",
}

// backendUnavailableError signals an unreachable or refusing backend for 503 mapping.
type backendUnavailableError struct {
	backend   types.BackendID
	cause     error
	permanent bool
}

func (e backendUnavailableError) Error() string {
	if e.cause == nil {
		return string(e.backend) + " unavailable"
	}
	return fmt.Sprintf("%s unavailable: %v", e.backend, e.cause)
}

func (e backendUnavailableError) Unwrap() error { return e.cause }

// ErrBackendUnavailable constructs a retryable availability error.
func ErrBackendUnavailable(backend types.BackendID, cause error) error {
	return backendUnavailableError{backend: backend, cause: cause}
}

// ErrAuthRejected marks a node that is reachable but refuses our
// credentials. Not retryable: it cannot heal without a config change.
func ErrAuthRejected(backend types.BackendID, cause error) error {
	return backendUnavailableError{backend: backend, cause: cause, permanent: true}
}

// IsBackendUnavailable reports whether err classifies as backend_unavailable.
func IsBackendUnavailable(err error) bool {
	var e backendUnavailableError
	return errors.As(err, &e)
}

// noMatchError signals a handled query with zero results for 404 mapping.
type noMatchError struct {
	backend types.BackendID
	query   string
}

func (e noMatchError) Error() string {
	if e.backend == "" {
		return fmt.Sprintf("no tracks matched %q", e.query)
	}
	return fmt.Sprintf("%s: no tracks matched %q", e.backend, e.query)
}

// ErrNoMatch constructs a zero-results error for the given query.
func ErrNoMatch(backend types.BackendID, query string) error {
	return noMatchError{backend: backend, query: query}
}

// IsNoMatch reports whether err indicates a query with zero results.
func IsNoMatch(err error) bool {
	var e noMatchError
	return errors.As(err, &e)
}

// extractionFailedError signals the backend was reached but extraction broke.
type extractionFailedError struct {
	backend types.BackendID
	cause   error
}

func (e extractionFailedError) Error() string {
	return fmt.Sprintf("%s extraction failed: %v", e.backend, e.cause)
}

func (e extractionFailedError) Unwrap() error { return e.cause }

// ErrExtractionFailed constructs an extraction error carrying its cause.
func ErrExtractionFailed(backend types.BackendID, cause error) error {
	return extractionFailedError{backend: backend, cause: cause}
}

// IsExtractionFailed reports whether err indicates a broken extraction.
func IsExtractionFailed(err error) bool {
	var e extractionFailedError
	return errors.As(err, &e)
}

// timeoutError signals an elapsed per-attempt or overall deadline.
type timeoutError struct {
	stage   string
	elapsed time.Duration
	cause   error
}

func (e timeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.stage, e.elapsed.Round(time.Millisecond))
}

func (e timeoutError) Unwrap() error { return e.cause }

// ErrTimeout constructs a deadline error; cause carries the context error
// so errors.Is(err, context.Canceled) keeps working.
func ErrTimeout(stage string, elapsed time.Duration, cause error) error {
	return timeoutError{stage: stage, elapsed: elapsed, cause: cause}
}

// IsTimeout reports whether err indicates an elapsed deadline.
func IsTimeout(err error) bool {
	var e timeoutError
	if errors.As(err, &e) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// KindOf classifies err into the wire taxonomy. nil yields ErrorKindNone;
// unrecognized errors count as extraction failures.
func KindOf(err error) types.ErrorKind {
	if err == nil {
		return types.ErrorKindNone
	}
	switch {
	case IsTimeout(err) || errors.Is(err, context.Canceled):
		return types.ErrorKindTimeout
	case IsBackendUnavailable(err):
		return types.ErrorKindBackendUnavailable
	case IsNoMatch(err):
		return types.ErrorKindNoMatch
	default:
		return types.ErrorKindExtractionFailed
	}
}

// Retryable reports whether a failed attempt is worth retrying on the
// same backend: transient availability problems, and extraction failures
// whose cause carries a known indicator.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var be backendUnavailableError
	if errors.As(err, &be) {
		return !be.permanent
	}
	var ee extractionFailedError
	if errors.As(err, &ee) {
		msg := ee.Error()
		if ee.cause != nil {
			msg = ee.cause.Error()
		}
		msg = strings.ToLower(msg)
		for _, ind := range retryIndicators {
			if strings.Contains(msg, ind) {
				return true
			}
		}
	}
	return false
}
