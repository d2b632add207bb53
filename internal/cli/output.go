package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/harrylevesque/chirp/internal/api"
	"github.com/harrylevesque/chirp/internal/app"
	"github.com/harrylevesque/chirp/internal/render"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // backend or I/O failure
	ExitCommandError = 2 // bad arguments or configuration
	ExitAuth         = 3 // missing or rejected credentials
)

// ExitError carries the exit code for an error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Backend auth failures
// map to ExitAuth; anything else unclassified is ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, app.ErrNotLoggedIn) {
		return ExitAuth
	}
	switch api.StatusCode(err) {
	case 401, 403:
		return ExitAuth
	}
	return ExitFailure
}

// errorReport is the JSON/YAML shape of a failed command.
type errorReport struct {
	Error        string `json:"error" yaml:"error"`
	Status       int    `json:"status,omitempty" yaml:"status,omitempty"`
	ErrorType    string `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// PrintError writes err for the user in format. Text goes to w as a single
// line; json and yaml keep the backend's error fields.
func PrintError(w io.Writer, format string, err error) {
	rep := errorReport{Error: err.Error()}
	var re *api.RequestError
	if errors.As(err, &re) {
		rep.Status = re.Status
		rep.ErrorType = re.ErrorType
		rep.ErrorMessage = re.ErrorMessage
	}
	switch format {
	case render.FormatJSON:
		_ = json.NewEncoder(w).Encode(rep)
	case render.FormatYAML:
		if r, rerr := render.New(format, w); rerr == nil {
			_ = r.Render(rep)
		}
	default:
		fmt.Fprintf(w, "Error: %s\n", rep.Error)
	}
}
