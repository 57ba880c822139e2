package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized      = errors.New("llm unauthorized")
	ErrUnavailable       = errors.New("llm unavailable")
	ErrEgressBlocked     = errors.New("egress blocked")
	ErrRateLimited       = errors.New("llm rate limited")
	ErrEmptyResponse     = errors.New("llm empty response")
	ErrEmptyConversation = errors.New("conversation has no turns")
	ErrMissingCredential = errors.New("missing credential")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// ConfigurationError reports a provider that cannot be used as configured.
type ConfigurationError struct {
	Provider string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error for provider %q: %v", e.Provider, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// RequestError is returned when a provider answers with a non-2xx status.
type RequestError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s error: %d %s - %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Is lets callers test a RequestError against the status sentinels.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnavailable:
		return e.StatusCode >= 500
	}
	return false
}
