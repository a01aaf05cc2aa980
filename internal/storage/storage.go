package storage

import (
	"errors"
	"maps"
	"strings"
	"sync"
	"time"
)

// domainKey mirrors config.DomainKey; storage only sees rendered settings.
const domainKey = "DOMAIN"

var (
	// ErrNotFound indicates the requested setting or resource is not published.
	ErrNotFound = errors.New("setting not found")
)

// Storage provides read access to the published settings snapshot.
type Storage interface {
	Settings() map[string]any
	Get(key string) (any, error)
	Domain() map[string]any
	Resource(name string) (any, error)
	PublishedAt() time.Time
}

// MemoryStorage keeps the settings snapshot in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu          sync.RWMutex
	settings    map[string]any
	publishedAt time.Time
}

// NewMemoryStorage initialises an empty storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: map[string]any{},
	}
}

// Publish replaces the snapshot with a copy of settings.
func (s *MemoryStorage) Publish(settings map[string]any, at time.Time) {
	snapshot := cloneSettings(settings)

	s.mu.Lock()
	s.settings = snapshot
	s.publishedAt = at
	s.mu.Unlock()
}

// Settings returns a defensive copy of the published settings.
func (s *MemoryStorage) Settings() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSettings(s.settings)
}

// Get returns a single setting. Keys are matched upper-cased.
func (s *MemoryStorage) Get(key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.settings[strings.ToUpper(key)]
	if !ok {
		return nil, ErrNotFound
	}
	if domain, isDomain := value.(map[string]any); isDomain {
		return maps.Clone(domain), nil
	}
	return value, nil
}

// Domain returns a copy of the published resources, or an empty map.
func (s *MemoryStorage) Domain() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	domain, _ := s.settings[domainKey].(map[string]any)
	if domain == nil {
		return map[string]any{}
	}
	return maps.Clone(domain)
}

// Resource returns the definition of a published resource.
func (s *MemoryStorage) Resource(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	domain, _ := s.settings[domainKey].(map[string]any)
	definition, ok := domain[strings.ToLower(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return definition, nil
}

// PublishedAt reports when the current snapshot was published.
func (s *MemoryStorage) PublishedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.publishedAt
}

func cloneSettings(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		if domain, ok := value.(map[string]any); ok && key == domainKey {
			value = maps.Clone(domain)
		}
		out[key] = value
	}
	return out
}
