package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ErrMalformedResponse marks a provider payload that could not be interpreted.
var ErrMalformedResponse = errors.New("malformed provider response")

// APIError is a non-success response from a provider API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	// RetryAfter is the Retry-After header in seconds on 429 responses,
	// 0 when absent.
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// responseError converts a non-2xx response into an APIError. For 429s it
// captures Retry-After and records backoff on the provider's limiter.
func responseError(provider string, limiter *RateLimiter, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	apiErr := &APIError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(b)),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = s
		}
		if limiter != nil {
			limiter.RecordRateLimited(apiErr.RetryAfter)
		}
	}
	return apiErr
}

// IsUnauthorized reports whether err is a credential rejection (401 or 403).
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRateLimited reports whether err is a 429 from the provider.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ErrorKind buckets a provider error for logging: timeout, unauthorized,
// rate_limited, malformed, api (other non-2xx), or network.
func ErrorKind(err error) string {
	switch {
	case IsTimeout(err):
		return "timeout"
	case IsUnauthorized(err):
		return "unauthorized"
	case IsRateLimited(err):
		return "rate_limited"
	}
	if errors.Is(err, ErrMalformedResponse) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "malformed"
	}
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "malformed"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return "api"
	}
	return "network"
}
