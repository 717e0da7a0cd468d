// SPDX-License-Identifier: MPL-2.0

package environment

import (
	"errors"
	"fmt"

	"github.com/contenv/contenv/internal/project"
)

var (
	// ErrInvalidField is the sentinel error wrapped by FieldError.
	ErrInvalidField = errors.New("invalid environment option")

	// ErrUnknownType is returned when no factory is registered for an environment type.
	ErrUnknownType = errors.New("unknown environment type")

	// ErrInvalidShellCommand is returned when a command line does not parse as shell.
	ErrInvalidShellCommand = errors.New("invalid shell command")
)

// FieldError reports an environment option with the wrong shape. Message is
// the complete user-facing text and names the offending field by its dotted
// path in the project descriptor.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string { return e.Message }

// Unwrap returns ErrInvalidField for errors.Is() compatibility.
func (e *FieldError) Unwrap() error { return ErrInvalidField }

// FieldPath returns the dotted descriptor path of option key of environment env.
func FieldPath(env, key string) string {
	return project.EnvTablePrefix + "." + env + "." + key
}

// mustBe builds the "Field `<path>` must be <kind>" error.
func mustBe(env, key, kind string) *FieldError {
	path := FieldPath(env, key)
	return &FieldError{
		Field:   path,
		Message: fmt.Sprintf("Field `%s` must be %s", path, kind),
	}
}

// itemMustBe builds the "<label> #<i> of field `<path>` must be <kind>" error, 1-based.
func itemMustBe(env, key, label string, index int, kind string) *FieldError {
	path := FieldPath(env, key)
	return &FieldError{
		Field:   path,
		Message: fmt.Sprintf("%s #%d of field `%s` must be %s", label, index, path, kind),
	}
}
