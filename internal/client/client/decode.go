package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 64 << 10

type errorBody struct {
	Message string              `json:"message"`
	Title   string              `json:"title"`
	Errors  map[string][]string `json:"errors"`
}

// decodeError builds the typed error for a non-2xx response. The body may be
// a JSON object with message/title/errors, a JSON string, or plain text.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(raw))

	var body errorBody
	var message string
	if err := json.Unmarshal(raw, &body); err == nil {
		message = body.Message
		if message == "" {
			message = body.Title
		}
	} else if err := json.Unmarshal(raw, &message); err != nil {
		message = text
	}

	switch status := resp.StatusCode; {
	case status == http.StatusUnauthorized:
		return &APIError{Status: status, Message: message, Err: ErrUnauthorized}
	case status == http.StatusNotFound:
		return &APIError{Status: status, Message: message, Err: ErrNotFound}
	case len(body.Errors) > 0 && status >= 400 && status < 500:
		return &ValidationError{Status: status, Message: message, Fields: body.Errors}
	default:
		return &APIError{Status: status, Message: message}
	}
}

func decodeJSON(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
