package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a mutation collides with current state
	ErrConflict = errors.New("conflict")
)

// RuleError is a business rule violation with a stable code for clients
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRuleError creates a RuleError
func NewRuleError(code, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}

// IsRuleError reports whether err is a business rule violation
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}
