package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired checks that a field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMaxLength checks the maximum length of a string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s must be at most %d characters long", fieldName, maxLength)
	}
	return nil
}

// ValidateUUID checks that a string is a valid UUID
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// DonationValidation holds donation-specific validations
type DonationValidation struct{}

// ValidateAmount checks a donation amount. The ceiling guards against fat
// fingers on the public form, not fraud.
func (v DonationValidation) ValidateAmount(amount float64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	if amount > 1_000_000 {
		return errors.New("amount exceeds the maximum accepted donation")
	}
	return nil
}

// LoginValidation holds login-specific validations
type LoginValidation struct{}

// ValidateCredentials checks the shape of a login request
func (v LoginValidation) ValidateCredentials(username, password string) error {
	if err := ValidateRequired(username, "username"); err != nil {
		return err
	}
	if err := ValidateMaxLength(username, 100, "username"); err != nil {
		return err
	}
	if err := ValidateRequired(password, "password"); err != nil {
		return err
	}
	return nil
}

// FilterValidation holds dashboard filter validations
type FilterValidation struct{}

// ValidateFilterValue bounds a free-text filter value. Filters are optional,
// so an empty value is always valid.
func (v FilterValidation) ValidateFilterValue(value, fieldName string) error {
	if value == "" {
		return nil
	}
	return ValidateMaxLength(value, 100, fieldName)
}
