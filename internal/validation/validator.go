package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Field limits shared with the storage schema.
const (
	MaxNameLength        = 255
	MaxEmailLength       = 255
	MaxMethodTypeLength  = 100
	MaxTokenLength       = 255
	MaxDescriptionLength = 500
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	Errors []ValidationError
}

func New() *Validator {
	return &Validator{
		Errors: make([]ValidationError, 0),
	}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// CheckRequired validates a non-empty, length-bounded string field.
func (v *Validator) CheckRequired(value, field string, maxLen int) {
	v.Check(strings.TrimSpace(value) != "", field, "is required")
	v.Check(len(value) <= maxLen, field, fmt.Sprintf("must be at most %d characters", maxLen))
}

// CheckEmail validates email shape and length.
func (v *Validator) CheckEmail(value, field string) {
	v.Check(emailRegex.MatchString(value), field, "must be a valid email address")
	v.Check(len(value) <= MaxEmailLength, field, fmt.Sprintf("must be at most %d characters", MaxEmailLength))
}

// Message flattens the collected errors into one line.
func (v *Validator) Message() string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
