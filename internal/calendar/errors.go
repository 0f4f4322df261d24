package calendar

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyID is returned, without a request being sent, when an item
// operation is given an empty event id.
var ErrEmptyID = errors.New("event id is empty")

// APIError is returned when the server answers with a non-2xx status.
// Body holds the response body exactly as received.
type APIError struct {
	StatusCode int
	Method     string
	URL        string
	Body       []byte
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("%s %s: unexpected status code %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status code %d: %s", e.Method, e.URL, e.StatusCode, string(e.Body))
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a server response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
