package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func oneOf(fl validator.FieldLevel) bool {
	matches := strings.Split(fl.Param(), " ")
	value := fl.Field().String()
	for _, match := range matches {
		if match == value {
			return true
		}
	}
	return false
}

// formFieldName reports validation errors under the name of the form field so they can be shown
// next to the input which caused them.
func formFieldName(field reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// RegisterValidation Inspiration: https://blog.logrocket.com/gin-binding-in-go-a-tutorial-with-examples/
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("error getting validation engine")
	}

	v.RegisterTagNameFunc(formFieldName)

	if err := v.RegisterValidation("oneOf", oneOf); err != nil {
		return err
	}
	return v.RegisterValidation("notblank", validators.NotBlank)
}

// FieldErrors translates validation errors into one message per form field. It returns nil if
// err isn't caused by validation.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}
		fields[fe.Field()] = fieldErrorMessage(fe)
	}
	return fields
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "Este campo es obligatorio."
	case "max", "lte":
		return fmt.Sprintf("Asegúrese de que este valor tenga como máximo %s caracteres.", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("Asegúrese de que este valor tenga al menos %s caracteres.", fe.Param())
	case "email":
		return "Introduzca una dirección de correo electrónico válida."
	case "oneOf", "oneof":
		return fmt.Sprintf("Escoja una opción válida. %v no es una de las opciones disponibles.", fe.Value())
	case "alphanumunicode":
		return "Introduzca un nombre de usuario válido. Solo puede contener letras y números."
	}
	return fmt.Sprintf("Valor no válido (%s).", fe.Tag())
}
