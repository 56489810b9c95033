package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigError reports an invalid configuration value. It is returned before any document
// is written.
type ConfigError struct { //nolint:revive // config.ConfigError reads better at call sites than config.Error
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: '%s' %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return fmt.Errorf("config error: %w", err)
	}

	seen := make(map[string]bool, len(c.Engines))
	for _, e := range c.Engines {
		key := strings.ToLower(e.Name)
		if seen[key] {
			return &ConfigError{Field: "engines", Message: fmt.Sprintf("has duplicate engine name %q", e.Name)}
		}
		seen[key] = true
	}

	return nil
}

func fieldError(fe validator.FieldError) *ConfigError {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	var msg string
	switch fe.Tag() {
	case "gte", "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		msg = "must be an absolute URL"
	case "required":
		msg = "is required"
	default:
		msg = fmt.Sprintf("failed '%s' validation", fe.Tag())
	}
	return &ConfigError{Field: field, Message: msg}
}
