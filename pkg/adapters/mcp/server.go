package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/conform"
	"github.com/aretw0/conform/pkg/domain"
	"github.com/aretw0/conform/pkg/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	schemasURI        = "conform://schemas"
	schemaURITemplate = "conform://schemas/{name}"
)

// ValidateResponse is the structured result of the validate_document tool.
type ValidateResponse struct {
	ID      string                   `json:"id" jsonschema_description:"Report identifier"`
	Schema  string                   `json:"schema" jsonschema_description:"Name of the schema used"`
	Valid   bool                     `json:"valid" jsonschema_description:"True when the document has no errors"`
	Errors  []schema.ValidationError `json:"errors" jsonschema_description:"Every failure with the path to the offending field"`
	Summary string                   `json:"summary" jsonschema_description:"One line per failure, path: message"`
}

// Engine defines what the MCP server needs from the conform engine.
type Engine interface {
	Register(ctx context.Context, name string, source []byte) error
	Definition(ctx context.Context, name string) (domain.Definition, error)
	Validate(ctx context.Context, name string, document map[string]any, opts ...conform.ValidateOption) (*domain.Report, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Server wraps the conform Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("conform-mcp", strings.TrimSpace(conform.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate_document",
		mcp.WithDescription("Validate a JSON document against a stored schema and list every error with its field path."),
		mcp.WithString("schema", mcp.Required(), mcp.Description("Name of the stored schema")),
		mcp.WithString("document", mcp.Required(), mcp.Description("The document, as a JSON object")),
		mcp.WithBoolean("allow_extra", mcp.Description("Ignore fields the schema does not declare (default false)")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List the names of the stored schemas."),
	), s.handleList)

	s.mcpServer.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Return the YAML or JSON source of a stored schema."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
	), s.handleGet)

	s.mcpServer.AddTool(mcp.NewTool("register_schema",
		mcp.WithDescription("Store a schema definition written in YAML or JSON, replacing any schema with the same name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Definition source (YAML or JSON)")),
	), s.handleRegister)

	s.mcpServer.AddTool(mcp.NewTool("delete_schema",
		mcp.WithDescription("Remove a stored schema."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Schema name")),
	), s.handleDelete)
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	name, _ := args["schema"].(string)
	raw, _ := args["document"].(string)

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var document map[string]any
	if err := dec.Decode(&document); err != nil {
		return ValidateResponse{}, fmt.Errorf("document must be a JSON object: %w", err)
	}

	var opts []conform.ValidateOption
	if allow, ok := args["allow_extra"].(bool); ok {
		opts = append(opts, conform.AllowExtra(allow))
	}

	report, err := s.engine.Validate(ctx, name, document, opts...)
	if err != nil {
		s.logger.Warn("MCP validate_document failed", "schema", name, "error", err)
		return ValidateResponse{}, fmt.Errorf("validate failed: %w", err)
	}

	return ValidateResponse{
		ID:      report.ID.String(),
		Schema:  report.Schema,
		Valid:   report.Valid,
		Errors:  report.Errors,
		Summary: summarize(report.Errors),
	}, nil
}

func summarize(errs []schema.ValidationError) string {
	if len(errs) == 0 {
		return "valid"
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.engine.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	def, err := s.engine.Definition(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(def.Source)), nil
}

func (s *Server) handleRegister(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	source := request.GetString("source", "")
	if err := s.engine.Register(ctx, name, []byte(source)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("register failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("schema %q registered", name)), nil
}

func (s *Server) handleDelete(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if err := s.engine.Delete(ctx, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("schema %q deleted", name)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(schemasURI, "Stored schema names",
		mcp.WithMIMEType("application/json"),
	), s.readSchemas)

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(schemaURITemplate, "Schema definition",
		mcp.WithTemplateMIMEType("text/plain"),
	), s.readSchema)
}

func (s *Server) readSchemas(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	names, err := s.engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	jsonBytes, _ := json.Marshal(names)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemasURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) readSchema(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name, ok := strings.CutPrefix(uri, schemasURI+"/")
	if !ok || name == "" {
		return nil, errors.New("expected " + schemaURITemplate)
	}
	def, err := s.engine.Definition(ctx, name)
	if err != nil {
		return nil, err
	}

	mimeType := "application/yaml"
	if def.Format == domain.FormatJSON {
		mimeType = "application/json"
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: mimeType,
			Text:     string(def.Source),
		},
	}, nil
}
