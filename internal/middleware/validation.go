package middleware

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const maxIDLength = 64

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateID validates an itinerary or activity ID taken from the URL.
// IDs are opaque; only length and encoding are checked.
func ValidateID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%s ID cannot be empty", kind)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%s ID exceeds maximum length", kind)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%s ID must be valid UTF-8", kind)
	}
	return nil
}

// ValidateRequest checks the struct tags of a decoded request body and
// returns a single readable error naming every offending field.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return errors.New("invalid request: " + strings.Join(msgs, "; "))
}
