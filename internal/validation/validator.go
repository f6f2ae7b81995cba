// Package validation turns go-playground/validator failures into field maps.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator wraps go-playground/validator with JSON field naming.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for request payloads.
func New() *Validator {
	v := validator.New()
	Configure(v)
	return &Validator{v: v}
}

// Configure registers JSON tag names and the custom tags on v.
// It is applied both to our own validator and to gin's binding engine.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

// Struct validates s and returns the failing fields, or nil when s is valid.
func (v *Validator) Struct(s any) map[string]string {
	fields, _ := FieldErrors(v.v.Struct(s))
	return fields
}

// Var validates a single value under the given field name.
func (v *Validator) Var(field string, value any, tag string) map[string]string {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{field: err.Error()}
	}
	return map[string]string{field: friendlyMessage(validationErrs[0])}
}

// FieldErrors converts validation and JSON decoding errors into a field -> message map.
// The bool is false when err is nil.
func FieldErrors(err error) (map[string]string, bool) {
	if err == nil {
		return nil, false
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fields[fieldPath(e)] = friendlyMessage(e)
		}
		return fields, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()}, true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return map[string]string{"non_field_errors": "malformed JSON body"}, true
	}

	return map[string]string{"non_field_errors": err.Error()}, true
}

// fieldPath drops the root struct name: "RecipeInput.tags[0].name" -> "tags[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	if ns == "" {
		return e.Field()
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "may not be blank"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
