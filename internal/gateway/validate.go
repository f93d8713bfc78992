package gateway

import (
	"errors"
	"strings"
	"unicode"

	"github.com/playtrade/storefront/internal/marketplace"
)

const minPasswordLength = 6

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// validateRegistration applies the storefront's registration rules
// before any bytes reach the marketplace: required fields, a plausible
// email, confirm match, and password complexity of at least one
// uppercase letter, one digit and one special character.
func validateRegistration(req marketplace.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return errors.New("username is required")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("a valid email is required")
	}
	if req.Password != req.ConfirmPassword {
		return errors.New("passwords do not match")
	}
	return validatePasswordComplexity(req.Password)
}

func validatePasswordComplexity(password string) error {
	var hasUpper, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(specialChars, c):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasDigit || !hasSpecial {
		return errors.New("password needs an uppercase letter, a digit and a special character")
	}
	return nil
}
