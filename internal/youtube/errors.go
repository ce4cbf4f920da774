package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for channel and video lookups.
var (
	// ErrNotFound means a lookup legitimately found nothing. It is an outcome,
	// not a failure.
	ErrNotFound = errors.New("youtube: not found")
	// ErrQuotaExceeded matches 403 responses (quota or permission) from the API.
	ErrQuotaExceeded = errors.New("youtube: quota exceeded")
	// ErrNoCredentials means no API key is configured. It is fatal for a run.
	ErrNoCredentials = errors.New("youtube: no API key configured")
	// ErrMalformedResponse marks responses that could not be decoded into
	// ChannelInfo or CandidateVideo.
	ErrMalformedResponse = errors.New("youtube: malformed response")
)

// APIError wraps any failure from the backing API with the operation that
// produced it. Unless it matches ErrQuotaExceeded it is treated as transient.
//
//	var apiErr *youtube.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("%s failed (status %d): %v\n", apiErr.Op, apiErr.StatusCode, apiErr.Err)
//	}
type APIError struct {
	// Op is the API method, e.g. "channels.list".
	Op string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Err is the underlying error.
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("youtube: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrQuotaExceeded) match 403 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.StatusCode == http.StatusForbidden
}

// IsQuotaExceeded reports whether err is a 403-class failure that should
// trigger key failover.
func IsQuotaExceeded(err error) bool {
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusForbidden
}

// wrapAPIError converts a client error into the package taxonomy: 404 becomes
// ErrNotFound, everything else an *APIError carrying the status code.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return &APIError{Op: op, StatusCode: gerr.Code, Err: err}
	}
	return &APIError{Op: op, Err: err}
}

// malformed reports a response that could not be decoded.
func malformed(op, format string, args ...any) error {
	return &APIError{Op: op, Err: fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))}
}
