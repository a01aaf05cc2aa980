package config

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when reading a key that was never set or detected.
	ErrKeyNotFound = errors.New("configuration key not found")
	// ErrMissingRequired is returned by Detect when a required key resolves to nothing.
	ErrMissingRequired = errors.New("required configuration value is missing")
	// ErrInvalidKey is returned when a key contains characters other than letters, digits, '_' and '-'.
	ErrInvalidKey = errors.New("invalid configuration key")
	// ErrInvalidMethod is returned when an HTTP verb is not one of HTTPMethods.
	ErrInvalidMethod = errors.New("unrecognized HTTP method")
)

// KeyNotFoundError reports the key that was looked up.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%q was not found in the configuration", e.Key)
}

// Is reports whether target is ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// MissingRequiredError reports the environment key that could not be resolved.
type MissingRequiredError struct {
	Key string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("the %q configuration value is required", e.Key)
}

// Is reports whether target is ErrMissingRequired.
func (e *MissingRequiredError) Is(target error) bool {
	return target == ErrMissingRequired
}
