package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/insignia/internal/entity"
	"github.com/roach88/insignia/internal/graph"
	"github.com/roach88/insignia/internal/graphstore"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // store or viewer failure
	ExitCommandError = 2 // bad input or unreadable config
)

// ExitError is a command failure carrying the process exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// failure exits with ExitFailure.
func failure(message string, err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: message, Err: err}
}

// commandError exits with ExitCommandError.
func commandError(message string, err error) *ExitError {
	return &ExitError{Code: ExitCommandError, Message: message, Err: err}
}

// GetExitCode maps the error returned by a command to its exit code.
// Errors that carry no code exit with ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// operationError classifies an error from an entity or graph operation.
// Malformed and unknown ids are the caller's fault; anything else is an
// operation failure.
func operationError(message string, err error) *ExitError {
	if errors.Is(err, graph.ErrInvalidFormat) || errors.Is(err, entity.ErrInvalidReference) {
		return commandError(message, err)
	}
	return failure(message, err)
}

// errorCode returns the CLIError code reported for err.
func errorCode(err error) string {
	var refErr *entity.ReferenceError
	switch {
	case errors.As(err, &refErr):
		return string(refErr.Code)
	case errors.Is(err, graph.ErrInvalidFormat):
		return "INVALID_FORMAT"
	case errors.Is(err, graphstore.ErrStoreUnavailable):
		return "STORE_UNAVAILABLE"
	}
	return "FAILED"
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // "INVALID_USER_ID", "INVALID_FORMAT", etc.
	Message string `json:"message"` // human-readable message
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// SuccessLines outputs data as JSON, or lines as text one per line.
func (f *OutputFormatter) SuccessLines(data interface{}, lines []string) error {
	if f.Format == "json" {
		return f.Success(data)
	}
	for _, line := range lines {
		fmt.Fprintln(f.Writer, line)
	}
	return nil
}

// Error outputs err in the configured format.
func (f *OutputFormatter) Error(err error) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    errorCode(err),
				Message: err.Error(),
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", errorCode(err), err)
	return nil
}
