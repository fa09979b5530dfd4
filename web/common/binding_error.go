package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FieldErrors is a Laravel style errors object. It marshals in insertion
// order, which is the struct field order the validator reports.
type FieldErrors struct {
	fields   []string
	messages map[string][]string
}

func NewFieldErrors() *FieldErrors {
	return &FieldErrors{messages: make(map[string][]string)}
}

func (e *FieldErrors) Add(field, message string) *FieldErrors {
	if _, ok := e.messages[field]; !ok {
		e.fields = append(e.fields, field)
	}
	e.messages[field] = append(e.messages[field], message)
	return e
}

func (e *FieldErrors) Empty() bool {
	return e == nil || len(e.fields) == 0
}

// First is the first message of the first field.
func (e *FieldErrors) First() string {
	if e.Empty() {
		return ""
	}
	return e.messages[e.fields[0]][0]
}

func (e *FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.messages[field])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BindingFieldErrors converts validator errors into FieldErrors. It returns
// nil for errors that are not about a field.
func BindingFieldErrors(err error) *FieldErrors {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := NewFieldErrors()
	for _, fe := range ve {
		out.Add(fe.Field(), formatFieldError(fe))
	}
	return out
}

func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}

	if err == io.EOF {
		return "Request body is empty"
	}

	// Handle JSON syntax errors
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return fmt.Sprintf("Invalid JSON at byte offset %d", syntaxErr.Offset)
	}

	// Handle JSON type errors (e.g. passing a string instead of a number)
	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Sprintf("Field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}

	if fe := BindingFieldErrors(err); !fe.Empty() {
		return fe.First()
	}

	// Generic fallback
	return err.Error()
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func formatFieldError(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", name, fe.Param())
	case "nefield":
		return fmt.Sprintf("The %s and %s must be different.", name, label(fe.Param()))
	}
	return fmt.Sprintf("The %s failed validation for '%s'.", name, fe.Tag())
}
