package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Veraticus/upi-triage/internal/common"
)

// Status values for failures that never produced an HTTP response.
const (
	StatusNetwork    = 0
	StatusUnexpected = -1
)

// Messages used when the backend gives nothing better.
const (
	MessageNetwork    = "Network error - please check your connection"
	MessageServer     = "Server error occurred"
	MessageUnexpected = "An unexpected error occurred"
)

// APIError is the normalized form of every failed backend call.
type APIError struct {
	Data    any
	Err     error
	Message string
	Status  int
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether the request never got a response.
func (e *APIError) IsNetwork() bool {
	return e.Status == StatusNetwork
}

// IsUnauthorized reports whether the backend rejected the credential.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

func networkError(err error) *APIError {
	return &APIError{Message: MessageNetwork, Status: StatusNetwork, Err: err}
}

func serverError(status int, body []byte) *APIError {
	apiErr := &APIError{Message: MessageServer, Status: status, Err: common.ErrBackend}

	var data any
	if len(body) > 0 && json.Unmarshal(body, &data) == nil {
		apiErr.Data = data
		if obj, ok := data.(map[string]any); ok {
			if detail, ok := obj["detail"].(string); ok && detail != "" {
				apiErr.Message = detail
			}
		}
	}

	if status == http.StatusUnauthorized {
		apiErr.Err = common.ErrUnauthorized
	}
	return apiErr
}

func unexpectedError(err error) *APIError {
	msg := MessageUnexpected
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &APIError{Message: msg, Status: StatusUnexpected, Err: err}
}

// Normalize converts any error into an APIError. Errors that are already
// normalized are returned unchanged.
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return unexpectedError(err)
}
