package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	_ "embed"
)

//go:embed openapi.yaml
var rawSpec []byte

// MaxBodyBytes bounds definition and document request bodies.
const MaxBodyBytes = 1 << 20

// Engine defines what the HTTP adapter needs from the conform engine.
type Engine interface {
	Register(ctx context.Context, name string, source []byte) error
	Definition(ctx context.Context, name string) (domain.Definition, error)
	Validate(ctx context.Context, name string, document map[string]any, opts ...conform.ValidateOption) (*domain.Report, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Server serves the conform REST API.
type Server struct {
	Engine  Engine
	Metrics http.Handler
	Logger  *slog.Logger
}

// HandlerOption configures NewHandler.
type HandlerOption func(*Server)

// WithMetrics exposes h on GET /metrics.
func WithMetrics(h http.Handler) HandlerOption {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(s *Server) {
		s.Logger = logger
	}
}

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return doc, nil
})

// GetSwagger returns the parsed and validated OpenAPI document of the API.
func GetSwagger() (*openapi3.T, error) {
	return loadSpec()
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...HandlerOption) http.Handler {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)

	r.Route("/schemas", func(r chi.Router) {
		r.Get("/", s.ListSchemas)
		r.Get("/{name}", s.GetSchema)
		r.Put("/{name}", s.PutSchema)
		r.Delete("/{name}", s.DeleteSchema)
		r.Post("/{name}/validate", s.ValidateDocument)
	})

	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Conform API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "conform-http",
		"version":     strings.TrimSpace(conform.Version),
		"api_version": apiVersion,
	})
}

// ListSchemas handles the GET /schemas request.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.fail(w, "ListSchemas", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

type definitionResponse struct {
	Name      string        `json:"name"`
	Format    domain.Format `json:"format"`
	Source    string        `json:"source"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// GetSchema handles the GET /schemas/{name} request.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	def, err := s.Engine.Definition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "GetSchema", err)
		return
	}
	writeJSON(w, http.StatusOK, definitionResponse{
		Name:      def.Name,
		Format:    def.Format,
		Source:    string(def.Source),
		UpdatedAt: def.UpdatedAt,
	})
}

// PutSchema handles the PUT /schemas/{name} request. The body is the raw YAML or JSON definition.
func (s *Server) PutSchema(w http.ResponseWriter, r *http.Request) {
	source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	if err := s.Engine.Register(r.Context(), chi.URLParam(r, "name"), source); err != nil {
		s.fail(w, "PutSchema", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSchema handles the DELETE /schemas/{name} request.
func (s *Server) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "DeleteSchema", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateDocument handles the POST /schemas/{name}/validate request.
// An invalid document still answers 200; the report says whether it passed.
func (s *Server) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var allowExtra *bool
	if err := runtime.BindQueryParameter("form", true, false, "allowExtra", r.URL.Query(), &allowExtra); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid format for parameter allowExtra: %v", err))
		return
	}

	document, err := decodeDocument(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		s.Logger.Warn("ValidateDocument: invalid request body", "error", err)
		return
	}

	var opts []conform.ValidateOption
	if allowExtra != nil {
		opts = append(opts, conform.AllowExtra(*allowExtra))
	}

	report, err := s.Engine.Validate(r.Context(), chi.URLParam(r, "name"), document, opts...)
	if err != nil {
		s.fail(w, "ValidateDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// decodeDocument reads a JSON object, keeping numbers as json.Number.
func decodeDocument(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON document: trailing data")
	}
	document, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("invalid JSON document: expected an object")
	}
	return document, nil
}

// fail maps engine errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrDefinitionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDefinition), errors.Is(err, domain.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrReadOnly):
		status = http.StatusForbidden
	case conform.IsContractError(err):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Debug(op+" rejected", "status", status, "error", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
