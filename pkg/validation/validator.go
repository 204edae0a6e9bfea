package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

// SourceSchemes lists the URI prefixes accepted by the "source" tag in
// addition to plain file paths and "-" for standard input.
var SourceSchemes = []string{"s3://", "nng+tcp://", "nng+ipc://", "nng+inproc://"}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("source", validateSource); err != nil {
		panic(fmt.Sprintf("register source validation: %v", err))
	}
}

// validateSource accepts "", "-", a file path, or one of SourceSchemes with
// a non-empty remainder.
func validateSource(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s == "-" {
		return true
	}
	for _, scheme := range SourceSchemes {
		if rest, ok := strings.CutPrefix(s, scheme); ok {
			if scheme == "s3://" {
				bucket, key, _ := strings.Cut(rest, "/")
				return bucket != "" && key != ""
			}
			return rest != ""
		}
	}
	return !strings.Contains(s, "://")
}

// Struct validates v using its `validate` struct tags.
func Struct(v any) error {
	if v == nil {
		return errors.New("value to validate cannot be nil")
	}
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]error, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s: field is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Errorf("%s: must be at least %s", field, param))
		case "max", "lte":
			msgs = append(msgs, fmt.Errorf("%s: must not exceed %s", field, param))
		case "gt":
			msgs = append(msgs, fmt.Errorf("%s: must be greater than %s", field, param))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("%s: must be one of [%s], got %q", field, param, fmt.Sprint(e.Value())))
		case "url":
			msgs = append(msgs, fmt.Errorf("%s: must be a URL", field))
		case "source":
			msgs = append(msgs, fmt.Errorf("%s: %q is not a file path, \"-\", or one of %v", field, fmt.Sprint(e.Value()), SourceSchemes))
		default:
			msgs = append(msgs, fmt.Errorf("%s: validation failed (%s)", field, e.Tag()))
		}
	}
	return errors.Join(msgs...)
}
