package extractor

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter applies when a 429 carries no usable Retry-After hint.
const DefaultRetryAfter = 60 * time.Second

// maxErrorBody bounds the provider response excerpt kept in errors.
const maxErrorBody = 500

// ProviderError is a non-200 answer from an extraction provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// RateLimitError indicates that a provider, or every provider in a chain,
// refused the request with HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// RetryAfterSeconds rounds the hint up to whole seconds for a Retry-After header.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return secs
}

// NewRateLimitError creates a RateLimitError. A non-positive retryAfter
// becomes DefaultRetryAfter.
func NewRateLimitError(provider string, err error, retryAfter time.Duration) *RateLimitError {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: retryAfter,
		Provider:   provider,
	}
}

// CheckResponse turns a non-200 provider response into an error. 429 yields
// a *RateLimitError wrapping the *ProviderError.
func CheckResponse(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	perr := &ProviderError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       Truncate(strings.TrimSpace(string(body)), maxErrorBody),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return NewRateLimitError(provider, perr, ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}
	return perr
}

// ParseRetryAfter reads a Retry-After value given either as delta seconds or
// as an HTTP date. Missing, malformed or past values return 0.
func ParseRetryAfter(val string, now time.Time) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(val)
	if err != nil || !at.After(now) {
		return 0
	}
	return at.Sub(now)
}
