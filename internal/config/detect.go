package config

import (
	"strconv"
	"strings"
	"time"
)

// truthyValues are read as true for boolean defaults. Anything else is false.
var truthyValues = map[string]bool{"1": true, "true": true, "t": true, "yes": true, "y": true, "on": true}

type detectOptions struct {
	def       any
	required  bool
	configKey string
}

// DetectOption tunes a single Detect call.
type DetectOption func(*detectOptions)

// Default is used when neither the environment nor a prior Set provides a value.
// Its type also drives coercion of environment values.
func Default(value any) DetectOption {
	return func(o *detectOptions) {
		o.def = value
	}
}

// Required makes Detect fail with ErrMissingRequired when nothing resolves.
func Required() DetectOption {
	return func(o *detectOptions) {
		o.required = true
	}
}

// ConfigKey stores the detected value under name instead of the environment key.
func ConfigKey(name string) DetectOption {
	return func(o *detectOptions) {
		o.configKey = name
	}
}

// Alias is the same as ConfigKey.
func Alias(name string) DetectOption {
	return ConfigKey(name)
}

// Detect resolves key and records the result. The environment is read at call
// time and wins over a value already set for the target key, which in turn
// wins over the default. A nil result is returned, and nothing is stored, when
// no source provides a value and the key is not required. Resolution and the
// store happen under one lock, so a concurrent Set on the same key lands
// either before or after the whole call.
func (s *Store) Detect(key string, opts ...DetectOption) (any, error) {
	var o detectOptions
	for _, opt := range opts {
		opt(&o)
	}

	envKey := normalizeKey(key)
	target := envKey
	if o.configKey != "" {
		target = normalizeKey(o.configKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.env.LookupEnv(envKey); ok {
		value := coerce(raw, o.def)
		s.values[target] = value
		return value, nil
	}

	if value, ok := s.values[target]; ok {
		return value, nil
	}

	if o.def == nil {
		if o.required {
			return nil, &MissingRequiredError{Key: envKey}
		}
		return nil, nil
	}

	s.values[target] = o.def
	return o.def, nil
}

// coerce converts an environment string to the type of def.
// Values that fail to parse are kept as the raw string, except for booleans
// where anything not truthy is false.
func coerce(raw string, def any) any {
	trimmed := strings.TrimSpace(raw)

	switch def.(type) {
	case bool:
		return parseBool(trimmed)
	case int:
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
	case int64:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	case float64:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case time.Duration:
		if d, err := time.ParseDuration(trimmed); err == nil {
			return d
		}
	case []string:
		return splitList(raw)
	}

	return raw
}

func parseBool(raw string) bool {
	return truthyValues[strings.ToLower(raw)]
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
