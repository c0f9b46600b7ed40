package gdrive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for upstream failure classification.
// Use errors.Is(err, gdrive.ErrNotFound) to check.
var (
	ErrNotFound    = errors.New("gdrive: not found")
	ErrAuthExpired = errors.New("gdrive: credential rejected")
	ErrUnavailable = errors.New("gdrive: upstream unavailable")
)

// Error wraps a sentinel error with the upstream HTTP status code and the
// provider's error message for debugging. The message is never sent to
// clients; handlers respond with generic text only.
type Error struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gdrive: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gdrive: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// mapError classifies an error returned by the Drive API client into the
// package's sentinel taxonomy. Anything that is not a provider response
// (network failure, context cancellation) counts as unavailable.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		sentinel := ErrUnavailable
		switch apiErr.Code {
		case http.StatusUnauthorized:
			sentinel = ErrAuthExpired
		case http.StatusForbidden:
			// Drive reports rejected and under-scoped grants as 403 with an
			// auth reason; other 403 reasons are quota or rate limits.
			if isAuthDenied(apiErr) {
				sentinel = ErrAuthExpired
			}
		case http.StatusNotFound:
			sentinel = ErrNotFound
		}
		return &Error{
			StatusCode: apiErr.Code,
			Message:    apiErr.Message,
			Err:        sentinel,
		}
	}

	return &Error{
		Message: err.Error(),
		Err:     ErrUnavailable,
	}
}

// isAuthDenied reports whether a 403 carries an auth-related reason, meaning
// the credential itself is no longer good enough and the user must sign in
// again.
func isAuthDenied(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "authError", "insufficientPermissions":
			return true
		}
	}
	return false
}
