package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 60 * time.Second

var (
	// ErrNotFound is returned when a remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a timeout sized for upstream
// model APIs, which can take tens of seconds per completion.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
