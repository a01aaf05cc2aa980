// Package config holds the settings store handed to the host application at
// boot. Values are resolved per key from the process environment, from values
// set explicitly, or from defaults, and are rendered into a single settings
// mapping with registered resources under the DOMAIN key.
//
// The package also carries the reference host bootstrap (Load) which layers a
// YAML settings file and CLI overrides on top of detected values, and decodes
// the host's own typed ServerConfig from the rendered settings.
package config
