package api

import (
	"fmt"
	"strings"
)

const maxErrorBody = 512

// TransportError is a request that never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteError is a response with a non 2xx status.
type RemoteError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RemoteError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("remote error: %s", e.Status)
	}
	return fmt.Sprintf("remote error: %s: %s", e.Status, body)
}

// MalformedResponseError is a 2xx response whose body does not have the expected shape.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
