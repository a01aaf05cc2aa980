package application

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/envsettings/internal/config"
)

func TestNewInitializesDependencies(t *testing.T) {
	settings := config.New(config.WithEnvironment(config.MapEnvironment{}), config.WithAppName("bookstore"))
	settings.Resource("books", map[string]any{"url": "books"})
	logger := zaptest.NewLogger(t)

	app, err := New(baseTestConfig(":8085"), settings, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	got, err := app.storage.Get(config.AppNameKey)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != "bookstore" {
		t.Fatalf("expected published app name, got %v", got)
	}
	if _, err := app.storage.Resource("books"); err != nil {
		t.Fatalf("expected published resource, got %v", err)
	}
	if app.storage.PublishedAt().IsZero() {
		t.Fatalf("expected publish time to be recorded")
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewSnapshotIsIsolatedFromStore(t *testing.T) {
	settings := config.New(config.WithEnvironment(config.MapEnvironment{}))
	settings.Set("FEATURE", "on")

	app, err := New(baseTestConfig(":0"), settings, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	settings.Set("FEATURE", "off")
	if got, _ := app.storage.Get("FEATURE"); got != "on" {
		t.Fatalf("expected published snapshot to be unaffected, got %v", got)
	}
}

func TestNewAppliesCacheControl(t *testing.T) {
	settings := config.New(config.WithEnvironment(config.MapEnvironment{}))
	settings.SetCache(60, 0)

	app, err := New(baseTestConfig(":0"), settings, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Fatalf("expected Cache-Control from settings, got %q", got)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(baseTestConfig(":0"), nil, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for missing store")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func baseTestConfig(port string) config.ServerConfig {
	return config.ServerConfig{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
