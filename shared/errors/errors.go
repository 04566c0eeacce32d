package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrNotFound = &ErrorWithStatusCode{Message: "Post not found", StatusCode: http.StatusNotFound}

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Is reports whether any error in err's chain is of type T.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// ValidationError is returned for empty or oversized input, before any I/O happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// RateLimitError is returned while the submission cooldown is active.
type RateLimitError struct {
	Remaining time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("Slow down: please wait %s before confessing again", formatWait(e.Remaining))
}

func (e *RateLimitError) StatusCode() int {
	return http.StatusTooManyRequests
}

// RemoteStoreError wraps any failure of the remote post store.
type RemoteStoreError struct {
	Op         string
	StatusCode int // 0 when the request never got a response
	Message    string
	Err        error
}

func (e *RemoteStoreError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote store %s failed (%d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("remote store %s failed: %s", e.Op, msg)
}

func (e *RemoteStoreError) Unwrap() error {
	return e.Err
}

// formatWait rounds up to whole minutes for long waits and whole seconds for short ones.
func formatWait(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d >= time.Minute {
		m := (d + time.Minute - 1) / time.Minute
		return fmt.Sprintf("%dm", m)
	}
	s := (d + time.Second - 1) / time.Second
	return fmt.Sprintf("%ds", s)
}
