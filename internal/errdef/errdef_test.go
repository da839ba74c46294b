package errdef_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dhis2-sre/eventos/internal/errdef"

	"github.com/stretchr/testify/assert"
)

func TestIsForbidden(t *testing.T) {
	assert.False(t, errdef.IsForbidden(errors.New("some error")))
	assert.True(t, errdef.IsForbidden(errdef.NewForbidden("some error")))
	assert.True(t, errdef.IsForbidden(fmt.Errorf("wrapped: %w", errdef.NewForbidden("some error"))))
}

func TestIsBadRequest(t *testing.T) {
	assert.False(t, errdef.IsBadRequest(errors.New("some error")))
	assert.True(t, errdef.IsBadRequest(errdef.NewBadRequest("some error")))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, errdef.IsDuplicated(errors.New("some error")))
	assert.True(t, errdef.IsDuplicated(errdef.NewDuplicated("some error")))
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, errdef.IsUnauthorized(errors.New("some error")))
	assert.True(t, errdef.IsUnauthorized(errdef.NewUnauthorized("some error")))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, errdef.IsNotFound(errors.New("some error")))
	assert.True(t, errdef.IsNotFound(errdef.NewNotFound("some error")))
}

func TestIsConflict(t *testing.T) {
	assert.False(t, errdef.IsConflict(errors.New("some error")))
	assert.True(t, errdef.IsConflict(errdef.NewConflict("some error")))
}

func TestValidation(t *testing.T) {
	err := errdef.NewValidation(map[string]string{
		"title": "Este campo es obligatorio.",
		"kind":  "Escoja una opción válida.",
	})

	assert.True(t, errdef.IsValidation(err))
	assert.False(t, errdef.IsValidation(errors.New("some error")))
	assert.Equal(t, "invalid input: kind: Escoja una opción válida., title: Este campo es obligatorio.", err.Error())
	assert.Equal(t, "Este campo es obligatorio.", errdef.ValidationFields(err)["title"])
	assert.Nil(t, errdef.ValidationFields(errors.New("some error")))
}
