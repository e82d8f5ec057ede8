package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RateLimitError signals a provider-side rate-limit rejection. Retryable.
type RateLimitError struct {
	RetryAfter time.Duration // zero when the provider gave no hint
}

func (e *RateLimitError) Error() string { return "rate limited" }

// AuthError signals an authentication or authorization failure. It will
// recur on every subsequent call, so the run must abort.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication error: " + e.Message
}

// TransportError signals a transient transport or server-side failure
// (5xx, connection reset, request timeout). Retryable.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error: status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsRetryable reports whether a failure class is expected to be transient.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	var te *TransportError
	return errors.As(err, &te)
}

// RetryAfterHint extracts the provider's suggested backoff, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return 0, false
}

// classifyTransport wraps network-level failures from http.Client.Do.
// Timeouts and connection errors are transient; context cancellation is not.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Err: err}
}
