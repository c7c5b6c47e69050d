package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed gateway call.
type Kind string

const (
	KindNetwork         Kind = "network"
	KindRateLimited     Kind = "rate_limited"
	KindAuth            Kind = "auth"
	KindBadRequest      Kind = "bad_request"
	KindTokenLimit      Kind = "token_limit"
	KindUpstream        Kind = "upstream"
	KindInvalidResponse Kind = "invalid_response"
)

// Error is returned for every gateway failure. StatusCode is the upstream
// HTTP status, zero when no response was received.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError unwraps err into a gateway error.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, k Kind) bool {
	ge, ok := AsError(err)
	return ok && ge.Kind == k
}

// StatusCode maps a gateway error onto the status returned to API clients.
// Non-gateway errors map to 500.
func StatusCode(err error) int {
	ge, ok := AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ge.Kind {
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindAuth:
		if ge.StatusCode == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case KindBadRequest, KindTokenLimit:
		return http.StatusBadRequest
	case KindNetwork:
		return http.StatusServiceUnavailable
	case KindUpstream, KindInvalidResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message shown to end users for a gateway error.
func UserMessage(err error) string {
	ge, ok := AsError(err)
	if !ok {
		return "Internal server error"
	}
	switch ge.Kind {
	case KindRateLimited:
		return "Rate limit exceeded. Please wait a moment before sending another message."
	case KindAuth:
		return "Authentication error with AI service. Please contact support."
	case KindTokenLimit:
		return "The conversation has reached the token limit. Please clear the conversation and start a new one."
	case KindBadRequest:
		return "Invalid request format. Please try again with a different message."
	case KindNetwork:
		return "Network error while connecting to AI service. Please try again."
	case KindInvalidResponse:
		return "Error parsing response from AI service. Please try again."
	default:
		if ge.Message != "" {
			return ge.Message
		}
		return "Failed to get response from AI"
	}
}
