package api

import "fmt"

// APIError is a non-2xx response decoded from the backend's error
// envelope. Status is always set; Code and Message are best-effort (the
// body may not be valid JSON at all).
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == 404
}
