// Package validator checks form input and reports field errors that can be
// translated before display.
//
// Struct-tag validation is delegated to go-playground/validator; field names
// come from the `form` tag so errors line up with the HTML inputs. Ad-hoc
// checks that tags cannot express are written as [Rule] values and combined
// with [Apply]:
//
//	err := validator.Apply(
//	    validator.Struct(draft),
//	    validator.RequiredString("name", draft.Name),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//	    ve.Translate(c.T)
//	}
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// ErrValidation is matched by every ValidationErrors value.
var ErrValidation = errors.New("validation failed")

// ValidationError is a single field failure.
type ValidationError struct {
	TranslationValues map[string]any
	Field             string
	Message           string
	TranslationKey    string
}

// ValidationErrors is the set of failures of one validation pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Field+": "+ve.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field failed.
func (e ValidationErrors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages for field in order.
func (e ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, ve := range e {
		if ve.Field == field {
			msgs = append(msgs, ve.Message)
		}
	}
	return msgs
}

// First returns the first message for field, or "".
func (e ValidationErrors) First(field string) string {
	for _, ve := range e {
		if ve.Field == field {
			return ve.Message
		}
	}
	return ""
}

// Map returns the first message per field.
func (e ValidationErrors) Map() map[string]string {
	m := make(map[string]string, len(e))
	for _, ve := range e {
		if _, ok := m[ve.Field]; !ok {
			m[ve.Field] = ve.Message
		}
	}
	return m
}

// Translate rewrites messages in place using fn. Errors without a
// translation key keep their message. A nil fn is a no-op.
func (e ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range e {
		if e[i].TranslationKey == "" {
			continue
		}
		values := make(map[string]any, len(e[i].TranslationValues)+1)
		for k, v := range e[i].TranslationValues {
			values[k] = v
		}
		if _, ok := values["field"]; !ok {
			values["field"] = e[i].Field
		}
		e[i].Message = fn(e[i].TranslationKey, values)
	}
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ExtractValidationErrors returns the field errors carried by err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// Rule is a single check. It returns nil when the value passes.
type Rule func() ValidationErrors

// Apply runs all rules and merges their failures.
// It returns nil when every rule passes.
func Apply(rules ...Rule) error {
	var all ValidationErrors
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		all = append(all, rule()...)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

// Fail builds a rule result for field.
func Fail(field, key, message string, values map[string]any) ValidationErrors {
	return ValidationErrors{{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	}}
}

// RequiredString fails when value is blank.
func RequiredString(field, value string) Rule {
	return func() ValidationErrors {
		if strings.TrimSpace(value) == "" {
			return Fail(field, "validation.required", "is required", nil)
		}
		return nil
	}
}

// OneOf fails when a non-empty value is not in allowed.
func OneOf[T ~string](field string, value T, allowed []T) Rule {
	return func() ValidationErrors {
		if value == "" {
			return nil
		}
		for _, a := range allowed {
			if a == value {
				return nil
			}
		}
		return Fail(field, "validation.oneof", "is not an allowed value", map[string]any{"value": string(value)})
	}
}

var (
	engineOnce sync.Once
	engine     *playground.Validate
)

func structEngine() *playground.Validate {
	engineOnce.Do(func() {
		engine = playground.New(playground.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return engine
}

// Struct validates s by its `validate` tags.
func Struct(s any) Rule {
	return func() ValidationErrors {
		err := structEngine().Struct(s)
		if err == nil {
			return nil
		}
		var fieldErrs playground.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Fail("", "validation.invalid", err.Error(), nil)
		}
		out := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, fromFieldError(fe))
		}
		return out
	}
}

func fromFieldError(fe playground.FieldError) ValidationError {
	ve := ValidationError{Field: fe.Field()}
	switch fe.Tag() {
	case "required":
		ve.TranslationKey, ve.Message = "validation.required", "is required"
	case "oneof":
		ve.TranslationKey, ve.Message = "validation.oneof", "must be one of: "+fe.Param()
		ve.TranslationValues = map[string]any{"values": fe.Param()}
	case "max":
		ve.TranslationKey, ve.Message = "validation.max_length", "must not exceed "+fe.Param()+" characters"
		ve.TranslationValues = map[string]any{"max": fe.Param()}
	case "url":
		ve.TranslationKey, ve.Message = "validation.url", "must be a valid URL"
	case "email":
		ve.TranslationKey, ve.Message = "validation.email", "must be a valid email address"
	default:
		ve.TranslationKey, ve.Message = "validation.invalid", "is invalid"
	}
	return ve
}
