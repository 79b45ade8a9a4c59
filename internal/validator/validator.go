package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError - ошибки по полям, ключ - имя из json-тега
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	validate *validator.Validate
}

// New собирает валидатор с json-именами полей и правилами перечислений.
// Ошибка регистрации правил - ошибка сборки, поэтому panic.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := registerCustomRules(v); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

// Validate возвращает *ValidationError, если структура не прошла проверку
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return &ValidationError{Errors: out}
}

func message(fe validator.FieldError) string {
	if rule, ok := enumRules[fe.Tag()]; ok {
		return rule.message
	}

	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "uuid":
		return "Must be a valid identifier"
	case "url":
		return "Must be a valid URL"
	case "eqfield":
		return "Passwords do not match"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters long", fe.Param())
	case "min", "max":
		return boundMessage(fe)
	case "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "gt", "lt":
		return fmt.Sprintf("Must be %s %s", fe.Tag(), fe.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return fmt.Sprintf("Invalid value (failed on '%s')", fe.Tag())
}

// boundMessage: для строк и срезов граница - длина, для чисел - значение
func boundMessage(fe validator.FieldError) string {
	word := "least"
	if fe.Tag() == "max" {
		word = "most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("Must be at %s %s characters long", word, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("Must contain at %s %s items", word, fe.Param())
	}
	return fmt.Sprintf("Must be at %s %s", word, fe.Param())
}
