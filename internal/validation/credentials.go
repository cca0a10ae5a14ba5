// Package validation provides input validation utilities
package validation

import "fmt"

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32
	MinPasswordLen = 6
	MaxPasswordLen = 128
)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}
	return nil
}

// ValidatePassword checks if a password meets requirements. Runs on the
// plaintext, before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLen)
	}
	return nil
}
