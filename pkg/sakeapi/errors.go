package sakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrUnauthorized is returned for any 401 response. The client has
	// already discarded its token when this is returned.
	ErrUnauthorized = errors.New("sakeapi: unauthorized")

	// ErrNetwork wraps transport-level failures.
	ErrNetwork = errors.New("sakeapi: network error")

	// ErrDecode wraps undecodable response bodies.
	ErrDecode = errors.New("sakeapi: invalid response body")

	// ErrEmptyUpload is returned when an import upload has no content.
	ErrEmptyUpload = errors.New("sakeapi: empty upload")

	// ErrInvalidID is returned for non-positive resource identifiers.
	ErrInvalidID = errors.New("sakeapi: invalid id")
)

// DefaultErrorMessage is used when the server gave no usable detail.
const DefaultErrorMessage = "An error occurred"

// genericMessage is shown for network and decode failures.
const genericMessage = "サーバーとの通信に失敗しました"

// APIError is a non-2xx, non-401 response.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sakeapi: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err ends the session.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Message converts a client error into text suitable for display.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	if errors.Is(err, ErrNetwork) || errors.Is(err, ErrDecode) {
		return genericMessage
	}
	return err.Error()
}

// errorBody is the error envelope. Detail is either a string or a list
// of validation issues.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationIssue struct {
	Msg string `json:"msg"`
}

// parseErrorMessage extracts the detail message from an error body.
func parseErrorMessage(body []byte) string {
	var env errorBody
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return DefaultErrorMessage
	}

	var detail string
	if err := json.Unmarshal(env.Detail, &detail); err == nil {
		if detail == "" {
			return DefaultErrorMessage
		}
		return detail
	}

	var issues []validationIssue
	if err := json.Unmarshal(env.Detail, &issues); err == nil {
		for _, is := range issues {
			if msg := strings.TrimSpace(is.Msg); msg != "" {
				return msg
			}
		}
	}

	return DefaultErrorMessage
}
