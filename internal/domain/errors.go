package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// FallbackAPIMessage is reported when a failed rates payload carries no message of its own.
const FallbackAPIMessage = "Failed to fetch rates"

var (
	ErrRateNotFound    = errors.New("rate not found")
	ErrUnknownCurrency = errors.New("currency not in rate table")
)

// TransportError means the rates request could not complete or came back with a non-2xx status.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err == nil {
		return "request failed"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError means the response was decoded but its status field reported a failure.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return FallbackAPIMessage
	}
	return e.Message
}
