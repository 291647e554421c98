package api

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
)

var (
	requiredTag  = "required"
	requiredText = "{0} is required"
)

// ValidationError lists the invalid fields of a request by their json name
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", gwerrors.ErrInvalidInput, strings.Join(messages, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == gwerrors.ErrInvalidInput
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterTranslation(
		requiredTag, translator,
		func(t ut.Translator) error { return t.Add(requiredTag, requiredText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(requiredTag, fe.Field())
			return s
		},
	)
	return validate, translator
}

// check validates the request before anything is sent to the backend
func (c *Client) check(payload any) error {
	err := c.validate.Struct(payload)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", gwerrors.ErrInvalidInput, err)
	}
	output := &ValidationError{Fields: map[string]string{}}
	for _, fieldErr := range validationErrs {
		output.Fields[fieldName(fieldErr)] = fieldErr.Translate(c.translator)
	}
	return output
}

// fieldName is the json path of the field without the name of the validated struct
func fieldName(fieldErr validator.FieldError) string {
	parts := strings.SplitN(fieldErr.Namespace(), ".", 2)
	if len(parts) < 2 {
		return fieldErr.Field()
	}
	return parts[1]
}
