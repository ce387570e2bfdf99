// Package validation runs the declared field rules against an inbound product
// and aggregates every violation into human-readable messages.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocatalog/catalog/internal/catalog"
)

// Validator wraps a validator.Validate instance configured to report field
// names by their json tags.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate runs all declared rules against the candidate and returns one
// message per violation, in field declaration order, formatted
// "Field <fieldName> <message>". A nil result means the candidate is valid.
func (v *Validator) Validate(candidate catalog.Product) []string {
	err := v.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field %s %s", fieldName(fieldErr), describe(fieldErr)))
	}
	return messages
}

// fieldName returns the json path of the violated field relative to the
// candidate, e.g. "name" or "category.id".
func fieldName(fieldErr validator.FieldError) string {
	ns := fieldErr.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fieldErr.Field()
}

// describe translates a validation tag into a stable human-readable message.
func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "must not be empty"
	case "gte":
		return "must be greater than or equal to " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param()
	default:
		return "failed on rule: " + fieldErr.Tag()
	}
}
