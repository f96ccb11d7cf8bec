package config

import (
	"fmt"
	"strings"

	"mammut/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	messages := make([]string, 0, len(ve))
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Add appends a validation error.
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Validate checks that the configuration is usable.
func (c MammutConfig) Validate() error {
	var errs ValidationErrors

	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		errs.Add("callbackPort", "must be between 0 and 65535", c.CallbackPort)
	}
	if strings.TrimSpace(c.ClientName) == "" {
		errs.Add("clientName", "is required", c.ClientName)
	}

	scopes := 0
	for _, s := range c.Scopes {
		if strings.TrimSpace(s) != "" {
			scopes++
		}
	}
	if scopes == 0 {
		errs.Add("scopes", "must have at least one scope", c.Scopes)
	}

	if c.LoginTimeout < 0 {
		errs.Add("loginTimeout", "must not be negative", c.LoginTimeout)
	}

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			errs.Add("logLevel", err.Error(), c.LogLevel)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
