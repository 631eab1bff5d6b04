package workspace

import "fmt"

// APIError is returned for any non-success response from the workspace API.
// It carries the HTTP status and raw response body for diagnosis.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("workspace API error: status %d: %s", e.StatusCode, e.Body)
}
