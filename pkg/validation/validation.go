// Package validation runs go-playground/validator struct tags and turns the
// first failure into a validation domain error keyed by the JSON field name.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "paam/pkg/domain-errors"
)

const fallbackMessage = "invalid request body"

var validate = build()

func build() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// messages maps a tag to a template; {f} is the field path and {p} the tag parameter.
var messages = map[string]string{
	"required":         "{f} is required",
	"notblank":         "{f} must not be blank",
	"email":            "{f} must be a valid email",
	"url":              "{f} must be a valid url",
	"uuid":             "{f} must be a valid uuid",
	"ip":               "{f} must be a valid ip address",
	"datetime":         "{f} must match the format {p}",
	"iso3166_1_alpha2": "{f} must be a two-letter country code",
	"min":              "{f} must be at least {p}",
	"max":              "{f} must be at most {p}",
	"oneof":            "{f} must be one of [{p}]",
}

// ErrorMessage describes the first failing field of a validator error.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fallbackMessage
	}
	fe := fieldErrs[0]
	field := fieldPath(fe)
	if field == "" {
		return fallbackMessage
	}

	tmpl, ok := messages[fe.ActualTag()]
	switch {
	case fe.ActualTag() == "min" && fe.Kind() == reflect.Slice:
		tmpl = "{f} must contain at least {p} item(s)"
	case !ok:
		tmpl = "{f} is invalid"
	}
	return strings.NewReplacer("{f}", field, "{p}", fe.Param()).Replace(tmpl)
}

// fieldPath strips the root struct from the namespace:
// "CreateProfileRequest.documents[0].type" becomes "documents[0].type".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}
