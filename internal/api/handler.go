package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/eugenenazirov/envsettings/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler serves the published settings snapshot.
type Handler struct {
	storage storage.Storage

	clock            func() time.Time
	sensitiveMarkers []string
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithSensitiveMarkers replaces the key fragments whose values are masked.
// An empty list disables masking.
func WithSensitiveMarkers(markers ...string) HandlerOption {
	return func(h *Handler) {
		h.sensitiveMarkers = make([]string, 0, len(markers))
		for _, m := range markers {
			h.sensitiveMarkers = append(h.sensitiveMarkers, strings.ToUpper(m))
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
		sensitiveMarkers: defaultSensitiveMarkers,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = r
	settings := h.storage.Settings()

	resp := settingsResponse{
		Settings:    presentSettings(settings, h.sensitiveMarkers),
		Keys:        slices.Sorted(maps.Keys(settings)),
		PublishedAt: h.storage.PublishedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := strings.ToUpper(strings.TrimSpace(r.PathValue("key")))

	value, err := h.storage.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found", "'"+key+"' was not found in the configuration")
			return
		}
		writeInternalError(w, err)
		return
	}

	resp := settingResponse{
		Key:   key,
		Value: presentSetting(key, value, h.sensitiveMarkers),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	_ = r
	domain := h.storage.Domain()

	resp := domainResponse{
		Resources: domain,
		Names:     slices.Sorted(maps.Keys(domain)),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetResource(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(strings.TrimSpace(r.PathValue("name")))

	definition, err := h.storage.Resource(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Resource not found", "no resource named '"+name+"' is registered",
				"Register it under resources in the settings file")
			return
		}
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resourceResponse{Name: name, Definition: definition})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type settingsResponse struct {
	Settings    map[string]any `json:"settings"`
	Keys        []string       `json:"keys"`
	PublishedAt time.Time      `json:"publishedAt"`
}

type settingResponse struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type domainResponse struct {
	Resources map[string]any `json:"resources"`
	Names     []string       `json:"names"`
}

type resourceResponse struct {
	Name       string `json:"name"`
	Definition any    `json:"definition"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// writeJSON encodes payload before committing the status. Encoding failures
// are answered with a 500 error body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Error:   "Internal error",
			Details: "unable to encode response: " + err.Error(),
		})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
