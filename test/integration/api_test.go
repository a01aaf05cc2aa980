package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/envsettings/internal/application"
	"github.com/eugenenazirov/envsettings/internal/config"
)

const settingsFile = `
values:
  PAGINATION_LIMIT: 25
resources:
  books:
    url: books
    schema:
      title: {type: string}
item_methods: [GET, PATCH]
cache:
  max_age: 30
`

func bootstrap(t *testing.T, env config.MapEnvironment, overrides *config.CLIOverrides) http.Handler {
	t.Helper()

	store, err := config.Load(overrides, env)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	cfg, err := config.ServerConfigFrom(store)
	if err != nil {
		t.Fatalf("ServerConfigFrom returned error: %v", err)
	}

	app, err := application.New(cfg, store, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("application.New returned error: %v", err)
	}
	return app.Server().Handler
}

func performRequest(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(settingsFile), 0o600); err != nil {
		t.Fatalf("write settings file: %v", err)
	}

	env := config.MapEnvironment{
		"DATABASE_URL":           "postgres://localhost/books",
		"DB_PASSWORD":            "hunter2",
		"ENABLE_REQUEST_LOGGING": "false",
		"RATE_LIMIT_RPS":         "0",
		"SETTINGS_FILE":          path,
	}
	overrides := &config.CLIOverrides{
		AppName: "bookstore",
		Require: []string{"DATABASE_URL", "DB_PASSWORD"},
		Set:     map[string]string{"FEATURE_SEARCH": "enabled"},
	}
	handler := bootstrap(t, env, overrides)

	rec := performRequest(t, handler, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}
	if rec.Header().Get("Cache-Control") != "max-age=30" {
		t.Fatalf("expected cache control from settings file, got %q", rec.Header().Get("Cache-Control"))
	}

	rec = performRequest(t, handler, "/api/settings")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings, got %d", rec.Code)
	}

	var response struct {
		Settings map[string]any `json:"settings"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	checks := map[string]any{
		"APP_NAME":         "bookstore",
		"DATABASE_URL":     "postgres://localhost/books",
		"DB_PASSWORD":      "[REDACTED]",
		"FEATURE_SEARCH":   "enabled",
		"PAGINATION_LIMIT": float64(25),
		"WRITE_TIMEOUT":    "15s",
	}
	for key, want := range checks {
		if got := response.Settings[key]; got != want {
			t.Fatalf("expected %s=%v, got %v", key, want, got)
		}
	}

	domain, ok := response.Settings["DOMAIN"].(map[string]any)
	if !ok || domain["books"] == nil {
		t.Fatalf("expected books under DOMAIN, got %v", response.Settings["DOMAIN"])
	}

	rec = performRequest(t, handler, "/api/domain/books")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from resource, got %d", rec.Code)
	}

	rec = performRequest(t, handler, "/api/settings/NEVER_SET")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown key, got %d", rec.Code)
	}
}

func TestIntegrationMissingRequiredAbortsBoot(t *testing.T) {
	overrides := &config.CLIOverrides{Require: []string{"DATABASE_URL"}}

	if _, err := config.Load(overrides, config.MapEnvironment{}); err == nil {
		t.Fatalf("expected boot to fail without DATABASE_URL")
	}
}
