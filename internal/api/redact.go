package api

import (
	"strings"
	"time"
)

const (
	redactedValue = "[REDACTED]"
	domainKey     = "DOMAIN"
)

var defaultSensitiveMarkers = []string{"SECRET", "PASSWORD", "TOKEN", "PRIVATE_KEY", "DSN"}

func isSensitive(key string, markers []string) bool {
	upper := strings.ToUpper(key)
	for _, marker := range markers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// presentSettings prepares settings for JSON output. Sensitive values are
// masked at any depth and durations are rendered in their string form.
// Resource definitions under DOMAIN are passed through untouched.
func presentSettings(settings map[string]any, markers []string) map[string]any {
	out := make(map[string]any, len(settings))
	for key, value := range settings {
		out[key] = presentSetting(key, value, markers)
	}
	return out
}

// presentSetting presents a top-level setting.
func presentSetting(key string, value any, markers []string) any {
	if key == domainKey {
		return value
	}
	return presentValue(key, value, markers)
}

func presentValue(key string, value any, markers []string) any {
	if isSensitive(key, markers) {
		return redactedValue
	}

	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = presentValue(k, inner, markers)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = presentValue("", inner, markers)
		}
		return out
	case time.Duration:
		return v.String()
	}
	return value
}
