package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is the YAML settings file layout.
//
//	values:
//	  DATABASE_URL: postgres://localhost/app
//	resources:
//	  books:
//	    schema: {...}
//	resource_methods: [GET, POST]
//	item_methods: [GET, PATCH, DELETE]
//	cache:
//	  max_age: 60
//	  expires: 30
type File struct {
	Values          map[string]any `yaml:"values"`
	Resources       map[string]any `yaml:"resources"`
	ResourceMethods []string       `yaml:"resource_methods"`
	ItemMethods     []string       `yaml:"item_methods"`
	Cache           *FileCache     `yaml:"cache"`
}

// FileCache represents the cache section in YAML.
type FileCache struct {
	MaxAge  int `yaml:"max_age"`
	Expires int `yaml:"expires"`
}

// LoadFile loads a settings file from path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	for key, value := range file.Values {
		file.Values[key] = normalizeYAML(value)
	}
	for name, definition := range file.Resources {
		file.Resources[name] = normalizeYAML(definition)
	}

	return &file, nil
}

// normalizeYAML rewrites mappings with non-string keys, which yaml.v3 decodes
// as map[interface{}]interface{}, into map[string]any at any depth.
func normalizeYAML(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeYAML(inner)
		}
		return out
	case map[string]any:
		for key, inner := range v {
			v[key] = normalizeYAML(inner)
		}
		return v
	case []any:
		for i, inner := range v {
			v[i] = normalizeYAML(inner)
		}
		return v
	}
	return value
}

// ApplyTo writes the file's contents into store as explicit values.
func (f *File) ApplyTo(store *Store) error {
	if err := store.Apply(f.Values); err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(f.Resources)) {
		store.Resource(name, f.Resources[name])
	}

	if len(f.ResourceMethods) > 0 {
		if err := store.ResourceMethods(f.ResourceMethods...); err != nil {
			return fmt.Errorf("resource_methods: %w", err)
		}
	}

	if len(f.ItemMethods) > 0 {
		if err := store.ItemMethods(f.ItemMethods...); err != nil {
			return fmt.Errorf("item_methods: %w", err)
		}
	}

	if f.Cache != nil {
		store.SetCache(f.Cache.MaxAge, f.Cache.Expires)
	}

	return nil
}

// FindFile locates name relative to the working directory by walking up the
// directory tree.
func FindFile(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("unable to locate %s", name)
}

func resolveFile(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("settings file %s does not exist", path)
	}
	return FindFile(path)
}
