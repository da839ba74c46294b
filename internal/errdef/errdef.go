// Package errdef defines the error kinds handlers record on the request so the error handler
// middleware can turn them into redirects, flash messages or status codes.
package errdef

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// NewForbidden creates an error representing an action the actor is not permitted to take. The
// message is shown to the user.
func NewForbidden(format string, a ...any) error {
	return forbidden{fmt.Errorf(format, a...)}
}

type forbidden struct{ error }

func IsForbidden(err error) bool {
	var e forbidden
	return errors.As(err, &e)
}

func NewBadRequest(format string, a ...any) error {
	return badRequest{fmt.Errorf(format, a...)}
}

type badRequest struct{ error }

func IsBadRequest(err error) bool {
	var e badRequest
	return errors.As(err, &e)
}

func NewDuplicated(format string, a ...any) error {
	return duplicated{fmt.Errorf(format, a...)}
}

type duplicated struct{ error }

func IsDuplicated(err error) bool {
	var e duplicated
	return errors.As(err, &e)
}

// NewUnauthorized creates an error representing a missing or invalid session. Requests failing
// with it are sent to the login page.
func NewUnauthorized(format string, a ...any) error {
	return unauthorized{fmt.Errorf(format, a...)}
}

type unauthorized struct{ error }

func IsUnauthorized(err error) bool {
	var e unauthorized
	return errors.As(err, &e)
}

// NewNotFound creates an error representing a resource that could not be found.
func NewNotFound(format string, a ...any) error {
	return notFound{fmt.Errorf(format, a...)}
}

type notFound struct{ error }

// IsNotFound returns true if err is an error representing a resource that could not be found and false otherwise.
func IsNotFound(err error) bool {
	var e notFound
	return errors.As(err, &e)
}

// NewConflict creates an error representing a conflicting state.
func NewConflict(format string, a ...any) error {
	return conflict{fmt.Errorf(format, a...)}
}

type conflict struct{ error }

// IsConflict returns true if err is an error representing a conflict and false otherwise.
func IsConflict(err error) bool {
	var e conflict
	return errors.As(err, &e)
}

// NewValidation creates an error carrying one message per invalid field. Keys are the form field
// names so templates can show the message next to the input.
func NewValidation(fields map[string]string) error {
	return validation{fields: fields}
}

type validation struct {
	fields map[string]string
}

func (v validation) Error() string {
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, len(keys))
	for i, k := range keys {
		messages[i] = fmt.Sprintf("%s: %s", k, v.fields[k])
	}
	return "invalid input: " + strings.Join(messages, ", ")
}

// IsValidation returns true if err carries field level validation messages.
func IsValidation(err error) bool {
	var e validation
	return errors.As(err, &e)
}

// ValidationFields returns the per-field messages of a validation error or nil if err isn't one.
func ValidationFields(err error) map[string]string {
	var e validation
	if !errors.As(err, &e) {
		return nil
	}
	return e.fields
}
