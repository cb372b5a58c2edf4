package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNetwork            = errors.New("network error")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrMalformedResponse  = errors.New("malformed response")
)

// APIError is a non-2xx response. Err, when set, is the sentinel the status
// maps to, so errors.Is(err, ErrUnauthorized) works on a wrapped APIError.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

func (e *APIError) Unwrap() error { return e.Err }

// ValidationError is a 4xx carrying per-field problems, as returned by the
// profile and upload endpoints.
type ValidationError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error: " + e.Message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], "; "))
	}
	return "validation error: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Status
	}
	return 0
}

// Message returns the server-provided text of err when there is one and
// err.Error() otherwise. It is meant for user-facing notifications.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// asCredentialsError turns a 4xx from login/register into ErrInvalidCredentials.
func asCredentialsError(err error) error {
	status := StatusOf(err)
	if status >= 400 && status < 500 {
		return &APIError{Status: status, Message: Message(err), Err: ErrInvalidCredentials}
	}
	return err
}
