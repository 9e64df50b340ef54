package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, arrival before departure).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned by the fixture API when a write is attempted
// without a bearer token. Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller is authenticated but does not own
// the resource, e.g. cancelling someone else's trip. Handlers map it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write contradicts current state, such as
// joining a community twice. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotFoundLocal is returned by the client-side models when an operation
// references an id that is absent from the collection it expects, e.g.
// leaving a community that was never joined. The operation is a no-op.
var ErrNotFoundLocal = errors.New("not found in local collection")

// FetchError is a failed remote call. Status is the HTTP status code, or 0
// when the request never produced a response.
type FetchError struct {
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch failed: %s", e.Message)
	}
	return fmt.Sprintf("fetch failed: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether retrying the same request could succeed:
// network failures, 408, 429 and 5xx responses.
func (e *FetchError) Temporary() bool {
	return e.Status == 0 ||
		e.Status == http.StatusRequestTimeout ||
		e.Status == http.StatusTooManyRequests ||
		e.Status >= 500
}

// AsFetchError unwraps err to a *FetchError if it contains one.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
