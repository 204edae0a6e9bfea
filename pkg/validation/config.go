package validation

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// FieldError describes one rejected configuration value.
type FieldError struct {
	Config string // e.g. "Config" or "InferenceOptions"
	Field  string // dotted path inside Config
	Reason string
	Err    error // set by Custom
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v", e.Config, e.Field, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Config, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	name   string
	errors []*FieldError
}

// NewConfigValidator creates a validator whose errors are prefixed with configName.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) *ConfigValidator {
	cv.errors = append(cv.errors, &FieldError{
		Config: cv.name,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	})
	return cv
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		return cv.fail(field, "required field is empty")
	}
	return cv
}

// NonNegative validates that an int field is >= 0.
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value < 0 {
		return cv.fail(field, "value %d must be non-negative", value)
	}
	return cv
}

// MaxInt validates that an int field does not exceed max.
func (cv *ConfigValidator) MaxInt(field string, value, max int) *ConfigValidator {
	if value > max {
		return cv.fail(field, "value %d exceeds maximum %d", value, max)
	}
	return cv
}

// GreaterThanFloat validates that a float field is strictly above bound.
// NaN never passes.
func (cv *ConfigValidator) GreaterThanFloat(field string, value, bound float64) *ConfigValidator {
	if !(value > bound) {
		return cv.fail(field, "value %g must be greater than %g", value, bound)
	}
	return cv
}

// MinDuration validates that a duration is at least min.
func (cv *ConfigValidator) MinDuration(field string, value, min time.Duration) *ConfigValidator {
	if value < min {
		return cv.fail(field, "duration %v is below minimum %v", value, min)
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	if !slices.Contains(allowed, value) {
		return cv.fail(field, "value %q must be one of %v", value, allowed)
	}
	return cv
}

// Custom records the error returned by fn, if any. The error stays
// reachable through errors.Is and errors.As.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, &FieldError{Config: cv.name, Field: field, Err: err})
	}
	return cv
}

// When applies validations only if condition holds.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Fields returns the names of the rejected fields in the order they failed.
func (cv *ConfigValidator) Fields() []string {
	fields := make([]string, len(cv.errors))
	for i, e := range cv.errors {
		fields[i] = e.Field
	}
	return fields
}

// Validate returns nil, the single *FieldError, or all of them joined.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	}
	errs := make([]error, len(cv.errors))
	for i, e := range cv.errors {
		errs[i] = e
	}
	return fmt.Errorf("%s validation failed with %d errors: %w", cv.name, len(errs), errors.Join(errs...))
}
