package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в ответах используем имена полей из json-тегов
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateStruct проверяет validate-теги и возвращает ошибки по полям.
// Пустая карта означает, что данные корректны.
func ValidateStruct(s interface{}) map[string]string {
	errs := map[string]string{}

	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs["_"] = err.Error()
		return errs
	}

	for _, fe := range validationErrs {
		errs[fe.Field()] = describe(fe)
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must be a date in format %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
