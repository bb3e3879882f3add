package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/conduit-lang/docschema/internal/cache"
	"github.com/conduit-lang/docschema/internal/catalog"
	"github.com/conduit-lang/docschema/internal/transcode"
)

// SchemaContentType is served for schema documents
const SchemaContentType = "application/schema+json"

const schemasPath = "/schemas"

// Renderer is what the HTTP layer needs from a catalog
type Renderer interface {
	Models() []string
	Version() string
	Render(ctx context.Context, name string, strict bool) (*catalog.Rendered, error)
	Invalidate(ctx context.Context, name string) error
}

type handlers struct {
	renderer Renderer
	logger   *zap.Logger
}

// NewRouter builds the HTTP API over a renderer
func NewRouter(renderer Renderer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handlers{renderer: renderer, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger, "/healthz"))
	r.Use(Recover(logger))
	r.Use(chimw.CleanPath)
	r.Use(chimw.GetHead)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "the requested resource was not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method "+r.Method+" is not allowed")
	})

	r.Get("/healthz", h.health)
	r.Route(schemasPath, func(r chi.Router) {
		r.Get("/", h.listSchemas)
		r.Get("/{model}", h.getSchema)
		r.Delete("/{model}/cache", h.invalidate)
	})
	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Models  int    `json:"models"`
	Version string `json:"version"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Models:  len(h.renderer.Models()),
		Version: h.renderer.Version(),
	})
}

type schemaEntry struct {
	Model string `json:"model"`
	URL   string `json:"url"`
}

type listResponse struct {
	Schemas []schemaEntry `json:"schemas"`
}

func (h *handlers) listSchemas(w http.ResponseWriter, _ *http.Request) {
	models := h.renderer.Models()
	resp := listResponse{Schemas: make([]schemaEntry, 0, len(models))}
	for _, name := range models {
		resp.Schemas = append(resp.Schemas, schemaEntry{Model: name, URL: transcode.SchemaIDPrefix + name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")

	strict := true
	if raw := r.URL.Query().Get("strict"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "strict must be a boolean")
			return
		}
		strict = parsed
	}

	rendered, err := h.renderer.Render(r.Context(), name, strict)
	if err != nil {
		h.renderError(w, r, name, err)
		return
	}

	w.Header().Set("ETag", rendered.ETag)
	w.Header().Set("Cache-Control", "no-cache")
	if tags := ParseIfNoneMatch(r); cache.MatchesETag(rendered.ETag, tags) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", SchemaContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Body)
}

func (h *handlers) invalidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	if err := h.renderer.Invalidate(r.Context(), name); err != nil {
		h.logger.Error("cache invalidation failed", zap.String("model", name), zap.Error(err))
		writeError(w, r, http.StatusBadGateway, "CACHE_UNAVAILABLE", "the schema cache could not be updated")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) renderError(w http.ResponseWriter, r *http.Request, name string, err error) {
	switch {
	case errors.Is(err, transcode.ErrModelNotFound), errors.Is(err, catalog.ErrAbstractModel):
		writeError(w, r, http.StatusNotFound, "MODEL_NOT_FOUND", "no schema for model "+name)
	case errors.Is(err, transcode.ErrCycleDetected):
		writeError(w, r, http.StatusUnprocessableEntity, "CYCLE_DETECTED", err.Error())
	case errors.Is(err, transcode.ErrUnknownKind):
		writeError(w, r, http.StatusUnprocessableEntity, "UNKNOWN_KIND", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "REQUEST_CANCELLED", "the request was cancelled")
	default:
		h.logger.Error("schema render failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("model", name),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to render schema")
	}
}

// ParseIfNoneMatch returns the entity tags of the request's If-None-Match header
func ParseIfNoneMatch(r *http.Request) []string {
	return cache.ParseIfNoneMatch(r.Header.Get("If-None-Match"))
}
