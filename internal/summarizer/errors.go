package summarizer

import (
	"fmt"
	"strings"
)

// TransportError reports a request that could not be completed.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ServerError reports a non-2xx answer. Detail carries the service's error
// text or a body snippet.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server: status %d: %s", e.StatusCode, e.Detail)
}

// MalformedResponse reports a 2xx body that is not JSON or lacks required fields.
type MalformedResponse struct {
	Missing []string
	Err     error
}

func (e *MalformedResponse) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %v", e.Err)
	}
	return "malformed response: missing " + strings.Join(e.Missing, ", ")
}

func (e *MalformedResponse) Unwrap() error { return e.Err }
