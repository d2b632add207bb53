package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RequestError is returned for every failed call: transport failures
// (Status 0), non-2xx responses and 2xx responses whose envelope reports
// "result": false.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   []byte
	// ErrorType and ErrorMessage come from the backend's error envelope
	// when the body carries one.
	ErrorType    string
	ErrorMessage string
	Message      string
	Err          error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if e.ErrorMessage != "" {
		msg = e.ErrorMessage
		if e.ErrorType != "" {
			msg = e.ErrorType + ": " + msg
		}
	}
	if e.Status != 0 {
		return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("api: %s %s: %s", e.Method, e.Path, msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status of a *RequestError in err's chain, or
// 0 when there is none.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// envelope is the backend's common response wrapper.
type envelope struct {
	Result       *bool  `json:"result"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	Detail       any    `json:"detail"`
}

// parseEnvelope extracts error details from body. ok is false when body
// is not a JSON object.
func parseEnvelope(body []byte) (env envelope, ok bool) {
	if len(body) == 0 || body[0] != '{' {
		return envelope{}, false
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, false
	}
	if env.ErrorMessage == "" {
		if s, isStr := env.Detail.(string); isStr {
			env.ErrorMessage = s
		}
	}
	return env, true
}
