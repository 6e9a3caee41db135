package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/foxy/foxy-go/internal/version"
)

var logLevels = []string{
	"", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled",
	"http", "verbose", "silly",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func v() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("apiversion", func(fl validator.FieldLevel) bool {
			return version.IsAPIVersionSupported(fl.Field().String())
		})
		validate.RegisterValidation("formatversion", func(fl validator.FieldLevel) bool {
			return version.IsConfigFormatSupported(fl.Field().String())
		})
		validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
			return slices.Contains(logLevels, strings.ToLower(fl.Field().String()))
		})
	})
	return validate
}

// Validate checks the settings that do not depend on the command being run.
// Credentials are checked when a client is created.
func (c *Config) Validate() error {
	err := v().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrInvalidConfig.Err(err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, describe(e))
	}
	return ErrInvalidConfig.Msg("invalid configuration: " + strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "url":
		return fmt.Sprintf("%s must be an absolute URL, got %q", field, e.Value())
	case "apiversion":
		return fmt.Sprintf("%s %q is not supported (want %s)", field, e.Value(), version.APIConstraint)
	case "formatversion":
		return fmt.Sprintf("%s %q is not supported (want %s)", field, e.Value(), version.ConfigFormatConstraint)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, e.Param(), e.Value())
	}
	return fmt.Sprintf("%s failed the %s check", field, e.Tag())
}
