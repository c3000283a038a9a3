package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/esaa/internal/model"
)

// Exit codes.
const (
	ExitSuccess      = 0 // command succeeded, projection verifies
	ExitDomainError  = 1 // domain error (validation, workflow, corruption surfaced as error)
	ExitVerifyFailed = 2 // command succeeded but verify_status is mismatch or corrupted
)

// ExitError carries a specific process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode extracts the exit code from a command error. A nil error
// is success; anything that is not an ExitError is a domain error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitDomainError
}

// printResult writes a command result as indented JSON and converts a
// failing verify status into exit code 2.
func printResult(w io.Writer, result any, verifyStatus string) error {
	if err := printJSON(w, result); err != nil {
		return err
	}
	if verifyStatus == model.VerifyMismatch || verifyStatus == model.VerifyCorrupted {
		return &ExitError{Code: ExitVerifyFailed}
	}
	return nil
}

// reportError writes the stable error envelope to stderr and maps the
// failure to exit code 1.
func reportError(w io.Writer, err error) error {
	code := model.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	envelope := map[string]string{
		"error_code":    code,
		"error_message": model.MessageOf(err),
	}
	if printErr := printJSON(w, envelope); printErr != nil {
		return &ExitError{Code: ExitDomainError, Err: printErr}
	}
	return &ExitError{Code: ExitDomainError, Err: err}
}

func printJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
