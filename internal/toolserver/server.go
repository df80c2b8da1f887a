// Package toolserver exposes the audit pipeline as MCP tools over HTTP.
package toolserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/Veraticus/plate-audit/internal/audit"
	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/highlight"
	"github.com/Veraticus/plate-audit/internal/model"
)

// Tool names.
const (
	ToolAuditMealPlan      = "audit_meal_plan"
	ToolExtractDishes      = "extract_dishes"
	ToolHighlightConflicts = "highlight_conflicts"
)

// Auditor runs a full audit.
type Auditor interface {
	Run(ctx context.Context, req audit.Request) (model.AuditResult, error)
}

// TemplateFinder resolves a diet template by ID.
type TemplateFinder interface {
	FindTemplate(ctx context.Context, id string) (model.DietTemplate, error)
}

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8011"

// Config controls where the server listens.
type Config struct {
	Addr string
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Server dispatches MCP tool calls to the audit pipeline.
type Server struct {
	auditor    Auditor
	templates  TemplateFinder
	injector   *highlight.Injector
	logger     *slog.Logger
	httpServer *http.Server
	tools      map[string]toolHandler
}

// New creates a tool server. templates may be nil, in which case audits must
// supply slots inline.
func New(cfg Config, auditor Auditor, templates TemplateFinder, logger *slog.Logger) *Server {
	logger = common.LoggerOrDefault(logger)
	s := &Server{
		auditor:   auditor,
		templates: templates,
		injector:  highlight.NewInjector(logger),
		logger:    logger,
	}
	s.tools = map[string]toolHandler{
		ToolAuditMealPlan:      s.handleAudit,
		ToolExtractDishes:      s.handleExtract,
		ToolHighlightConflicts: s.handleHighlight,
	}

	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHTTP)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler serving tool calls.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until the context is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("tool server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		s.logger.Warn("tool call rejected", "tool", request.Name, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode tool result", "tool", request.Name, "error", err)
	}
}

func createJSONResponse(data any, isError bool) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
		IsError: isError,
	}, nil
}
