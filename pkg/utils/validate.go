package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["body"] = err.Error()
		return errs
	}

	for _, err := range validationErrors {
		field := toSnakeCase(err.Field())

		switch err.Tag() {
		case "required":
			errs[field] = fmt.Sprintf("%s is required", field)
		case "min":
			errs[field] = fmt.Sprintf("%s must be at least %s characters", field, err.Param())
		case "max":
			errs[field] = fmt.Sprintf("%s must be at most %s characters", field, err.Param())
		case "gt":
			errs[field] = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "gte":
			errs[field] = fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
		case "email":
			errs[field] = fmt.Sprintf("%s must be a valid email", field)
		case "oneof":
			errs[field] = fmt.Sprintf("%s must be one of [%s]", field, err.Param())
		case "dive":
			errs[field] = fmt.Sprintf("%s contains an invalid element", field)
		default:
			errs[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return errs
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && s[i-1] >= 'a' && s[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
