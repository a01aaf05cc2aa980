package config

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"
)

const (
	// DomainKey is the reserved settings key holding registered resources.
	DomainKey = "DOMAIN"
	// AppNameKey stores the application name passed to WithAppName.
	AppNameKey = "APP_NAME"
)

var keyPattern = regexp.MustCompile(`^[\w\-]+$`)

// Store holds configuration values and named resource definitions.
// A single RWMutex guards the whole store. Detect resolves and stores under
// the write lock, so concurrent Detect and Set calls are serialized.
type Store struct {
	mu        sync.RWMutex
	env       Environment
	values    map[string]any
	resources map[string]any
}

// Option configures a Store created by New.
type Option func(*Store)

// WithEnvironment overrides the environment reader used by Detect.
func WithEnvironment(env Environment) Option {
	return func(s *Store) {
		if env != nil {
			s.env = env
		}
	}
}

// WithAppName stores name under APP_NAME.
func WithAppName(name string) Option {
	return func(s *Store) {
		s.values[AppNameKey] = name
	}
}

// WithValues sets initial explicit values.
func WithValues(values map[string]any) Option {
	return func(s *Store) {
		for key, value := range values {
			s.values[normalizeKey(key)] = value
		}
	}
}

// New creates an empty store reading from the process environment unless
// WithEnvironment says otherwise.
func New(opts ...Option) *Store {
	s := &Store{
		env:    OSEnvironment{},
		values: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidKey reports whether key is usable as a configuration key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Set overwrites the value stored under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	s.values[normalizeKey(key)] = value
	s.mu.Unlock()
}

// Get returns the value stored under key, or a *KeyNotFoundError.
func (s *Store) Get(key string) (any, error) {
	key = normalizeKey(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return value, nil
}

// Apply sets every entry of values. Keys are validated first and nothing is
// written if any of them is invalid.
func (s *Store) Apply(values map[string]any) error {
	for key := range values {
		if !ValidKey(key) {
			return fmt.Errorf("%w: %q (example: YOUR_CONFIG_VAR)", ErrInvalidKey, key)
		}
	}

	s.mu.Lock()
	for key, value := range values {
		s.values[normalizeKey(key)] = value
	}
	s.mu.Unlock()

	return nil
}

// Resource registers or replaces the definition of a named resource.
// The definition is stored untouched.
func (s *Store) Resource(name string, definition any) {
	s.mu.Lock()
	if s.resources == nil {
		s.resources = make(map[string]any)
	}
	s.resources[strings.ToLower(strings.TrimSpace(name))] = definition
	s.mu.Unlock()
}

// Domain returns a copy of the registered resources.
func (s *Store) Domain() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.resources)
}

// Settings renders a shallow copy of the values with registered resources
// under DOMAIN, replacing any value set explicitly under that key. The returned
// map is owned by the caller.
func (s *Store) Settings() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.values)+1)
	maps.Copy(out, s.values)
	if s.resources != nil {
		domain := make(map[string]any, len(s.resources))
		maps.Copy(domain, s.resources)
		out[DomainKey] = domain
	}
	return out
}

// Keys returns the sorted list of stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.values))
}

func normalizeKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}
