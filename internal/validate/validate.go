// Package validate resolves credential problems before a request leaves the
// client, and maps the backend's validation payloads into the same shape, so
// display code never cares where a field error came from.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its messages, in server-authoritative
// order. The first message is the one surfaced inline.
type FieldErrors map[string][]string

// First returns the inline message for a field, or "" when the field is clean.
func (f FieldErrors) First(field string) string {
	if msgs := f[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether the field carries any message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

var validate = validator.New()

// Check validates a tagged request struct locally. A nil return means the
// payload may go out on the wire.
func Check(data any) FieldErrors {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"": {"invalid payload"}}
	}

	fields := make(FieldErrors)
	for _, e := range validationErrors {
		field := resolveFieldName(data, e.StructField())
		fields[field] = append(fields[field], messageFor(field, e))
	}
	return fields
}

func messageFor(field string, e validator.FieldError) string {
	label := fieldLabel(field)
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, e.Param())
	case "eqfield":
		return "Passwords do not match"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func fieldLabel(field string) string {
	if field == "" {
		return "Field"
	}
	label := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// resolveFieldName translates a Go struct field into its wire name.
func resolveFieldName(data any, field string) string {
	t := reflect.TypeOf(data)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if f, ok := t.FieldByName(field); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}

	return strings.ToLower(field)
}
