package config

import "os"

// Environment reads environment variables at call time.
type Environment interface {
	LookupEnv(key string) (string, bool)
}

// OSEnvironment reads from the process environment.
type OSEnvironment struct{}

// LookupEnv retrieves the variable named by key.
func (OSEnvironment) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnvironment is a fixed environment, mostly useful in tests.
type MapEnvironment map[string]string

// LookupEnv retrieves key from the map.
func (m MapEnvironment) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
