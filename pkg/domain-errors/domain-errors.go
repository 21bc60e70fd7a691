package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in generation terms, not HTTP terms.
type Code string

const (
	CodeNotFound           Code = "not_found"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_failed"
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInvalidConfig      Code = "invalid_config"

	// Generation failures. A run that hits any of these produces no output.
	CodeInsufficientPopulation Code = "insufficient_population" // not enough distinct users for a sampling constraint
	CodeNoEligibleUser         Code = "no_eligible_user"        // a scenario filter matched nobody
	CodeEmptyDataset           Code = "empty_dataset"           // assembler called with an empty collection
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across generator, store, and sink layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Targets for errors.Is. They match any error carrying the same code.
var (
	ErrInsufficientPopulation = &Error{Code: CodeInsufficientPopulation}
	ErrNoEligibleUser         = &Error{Code: CodeNoEligibleUser}
	ErrEmptyDataset           = &Error{Code: CodeEmptyDataset}
	ErrInvalidConfig          = &Error{Code: CodeInvalidConfig}
)

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error in the chain,
// or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
