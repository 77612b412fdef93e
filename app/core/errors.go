package core

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidCredentials never says which of phone or password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")
)

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// Invalid is shorthand for a ValidationError carrying only a message.
func Invalid(msg string) error {
	return &ValidationError{Err: errors.New(msg)}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// Messages flattens the error into lines suitable for a form banner.
func (err ValidationError) Messages() []string {
	if len(err.Fields) == 0 {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Error)
	}
	return msgs
}

// ConstraintError reports a unique or foreign key violation.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (err ConstraintError) Error() string {
	return fmt.Sprintf("constraint %q violated: %v", err.Constraint, err.Err)
}

func (err ConstraintError) Unwrap() error { return err.Err }

// IOError is a recoverable filesystem failure. It is logged, never surfaced.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", err.Op, err.Path, err.Err)
}

func (err IOError) Unwrap() error { return err.Err }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func IsConstraint(err error) bool {
	var cErr *ConstraintError
	return errors.As(err, &cErr)
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	ok := errors.As(err, &vErr)
	return vErr, ok
}
