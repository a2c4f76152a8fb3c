package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrValueIsInvalid  = errors.New("value is invalid")
	ErrValueIsRequired = errors.New("value is required")
	ErrDataAccess      = errors.New("data access failed")
	ErrValidation      = errors.New("validation failed")
	ErrExternalTool    = errors.New("external tool failed")
)

// maxToolOutputBytes bounds the captured compiler output retained in an
// ExternalToolError. Tool logs can run to tens of megabytes; only the tail
// is useful for diagnosis.
const maxToolOutputBytes = 8 * 1024

// ObjectNotFoundError indicates that a requested object does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError indicates that a supplied value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsRequiredError indicates that a required value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// DataAccessError indicates that the relational store was unreachable or a
// query failed at the driver level. It is distinct from a query that
// succeeded with zero rows: an empty result is never a DataAccessError.
type DataAccessError struct {
	Op    string
	Cause error
}

func NewDataAccessError(op string, cause error) *DataAccessError {
	return &DataAccessError{Op: op, Cause: cause}
}

func (e *DataAccessError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrDataAccess, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDataAccess, e.Op)
}

func (e *DataAccessError) Unwrap() error {
	return ErrDataAccess
}

// ValidationError indicates that the pipeline's input failed a sanity check,
// e.g. an empty segment set or too many unparsable geometries. The Reason is
// a human-readable cause surfaced to operators as-is.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ExternalToolError indicates that one stage of the external graph compiler
// exited non-zero or exceeded its deadline. Output retains at most the last
// maxToolOutputBytes of the stage's combined stdout/stderr.
type ExternalToolError struct {
	Stage    string
	ExitCode int
	Output   string
	Cause    error
}

func NewExternalToolError(stage string, exitCode int, output string, cause error) *ExternalToolError {
	if len(output) > maxToolOutputBytes {
		output = output[len(output)-maxToolOutputBytes:]
	}
	return &ExternalToolError{Stage: stage, ExitCode: exitCode, Output: output, Cause: cause}
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s: stage %s exited with code %d", ErrExternalTool, e.Stage, e.ExitCode)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	if tail := lastLine(e.Output); tail != "" {
		msg = fmt.Sprintf("%s: %s", msg, tail)
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error {
	return ErrExternalTool
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
