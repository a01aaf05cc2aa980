package config

import (
	"fmt"
	"slices"
	"strings"
)

const (
	defaultCacheSeconds = 20

	// ResourceMethodsKey lists the HTTP verbs allowed on resource endpoints.
	ResourceMethodsKey = "RESOURCE_METHODS"
	// ItemMethodsKey lists the HTTP verbs allowed on item endpoints.
	ItemMethodsKey = "ITEM_METHODS"
	// CacheControlKey holds the Cache-Control header value set by SetCache.
	CacheControlKey = "CACHE_CONTROL"
	// CacheExpiresKey holds the cache expiry in seconds set by SetCache.
	CacheExpiresKey = "CACHE_EXPIRES"
)

// HTTPMethods are the verbs accepted by ResourceMethods and ItemMethods.
var HTTPMethods = []string{"GET", "POST", "PUT", "PATCH", "HEAD", "DELETE"}

// ResourceMethods sets RESOURCE_METHODS.
func (s *Store) ResourceMethods(methods ...string) error {
	return s.setMethods(ResourceMethodsKey, methods)
}

// ItemMethods sets ITEM_METHODS.
func (s *Store) ItemMethods(methods ...string) error {
	return s.setMethods(ItemMethodsKey, methods)
}

func (s *Store) setMethods(key string, methods []string) error {
	normalized, err := normalizeMethods(methods)
	if err != nil {
		return err
	}
	s.Set(key, normalized)
	return nil
}

// SetCache sets CACHE_CONTROL and CACHE_EXPIRES. A non-positive maxAge falls
// back to 20 seconds; expires of zero follows maxAge and a negative one falls
// back to 20 seconds.
func (s *Store) SetCache(maxAge, expires int) {
	if maxAge <= 0 {
		maxAge = defaultCacheSeconds
	}

	switch {
	case expires == 0:
		expires = maxAge
	case expires < 0:
		expires = defaultCacheSeconds
	}

	s.Set(CacheControlKey, fmt.Sprintf("max-age=%d", maxAge))
	s.Set(CacheExpiresKey, expires)
}

func normalizeMethods(methods []string) ([]string, error) {
	out := make([]string, 0, len(methods))
	for _, method := range methods {
		method = strings.ToUpper(strings.TrimSpace(method))
		if !slices.Contains(HTTPMethods, method) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
		}
		out = append(out, method)
	}
	return out, nil
}
