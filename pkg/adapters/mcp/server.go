// Package mcp exposes the canvas engine as an MCP server, so agent hosts
// can inspect and manipulate the scene through tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oliver-os/canvas"
	"github.com/oliver-os/canvas/pkg/domain"
)

// Engine defines the facade surface the MCP server drives.
type Engine interface {
	Snapshot() domain.CanvasSnapshot
	Objects() []domain.ObjectConfig

	Activate(id string) error
	Deactivate(id string) error
	Toggle(id string) (bool, error)

	SetPosition(id string, pos domain.Position) error
	Undo() bool
	Redo() bool
	ResetAll()
	ApplyPreset(ctx context.Context, name string) (int, error)
	Presets(ctx context.Context) ([]string, error)

	Click(x, y float64) (string, domain.ClickZone, error)

	LoadAssets(ctx context.Context) (int, error)
	Progress() int
	FailedAssets() []string
	RetryAsset(ctx context.Context, path string) error
}

// ToggleResponse is the structured result of activation tools.
type ToggleResponse struct {
	ID     string `json:"id" jsonschema_description:"The object that changed"`
	Active bool   `json:"active" jsonschema_description:"Whether the object is active after the call"`
}

// ClickResponse is the structured result of the click tool.
type ClickResponse struct {
	ID   string `json:"id" jsonschema_description:"The topmost object hit, empty for the bare canvas"`
	Zone string `json:"zone" jsonschema_description:"Which horizontal third of the object was hit"`
}

// Server wraps the canvas Engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance over the engine.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("canvas-mcp", strings.TrimSpace(canvas.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
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
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: get_snapshot
	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Get the full render view: every object with position, activation state, and load progress, ordered by z-index."),
		mcp.WithOutputSchema[domain.CanvasSnapshot](),
	), mcp.NewStructuredToolHandler(s.handleSnapshot))

	// TOOL: toggle_object
	s.mcpServer.AddTool(mcp.NewTool("toggle_object",
		mcp.WithDescription("Flip an interactive object's activation state. Activation cascades onto dependent objects with a staggered delay."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object ID")),
		mcp.WithOutputSchema[ToggleResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggle))

	// TOOL: set_active
	s.mcpServer.AddTool(mcp.NewTool("set_active",
		mcp.WithDescription("Activate or deactivate an interactive object explicitly."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object ID")),
		mcp.WithBoolean("active", mcp.Required(), mcp.Description("Target activation state")),
		mcp.WithOutputSchema[ToggleResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetActive))

	// TOOL: set_position
	s.mcpServer.AddTool(mcp.NewTool("set_position",
		mcp.WithDescription("Move and resize an object. The edit is undoable; width and height must be positive."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Object ID")),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Left edge")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Top edge")),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("Width, must be positive")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("Height, must be positive")),
	), s.handleSetPosition)

	// TOOL: click
	s.mcpServer.AddTool(mcp.NewTool("click",
		mcp.WithDescription("Route a pointer press: resolves the topmost object and click zone; a middle-zone click toggles activation."),
		mcp.WithNumber("x", mcp.Required(), mcp.Description("Pointer X")),
		mcp.WithNumber("y", mcp.Required(), mcp.Description("Pointer Y")),
		mcp.WithOutputSchema[ClickResponse](),
	), mcp.NewStructuredToolHandler(s.handleClick))

	// TOOL: history
	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Step position history back one edit."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf(`{"moved": %t}`, s.engine.Undo())), nil
	})
	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Step position history forward one edit."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(fmt.Sprintf(`{"moved": %t}`, s.engine.Redo())), nil
	})
	s.mcpServer.AddTool(mcp.NewTool("reset_layout",
		mcp.WithDescription("Restore every object to its registry-declared position and clear the history."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.engine.ResetAll()
		return mcp.NewToolResultText(`{"status": "reset"}`), nil
	})

	// TOOL: apply_preset
	s.mcpServer.AddTool(mcp.NewTool("apply_preset",
		mcp.WithDescription("Apply a named position preset. Unknown object IDs in the preset are skipped."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Preset name")),
	), s.handleApplyPreset)

	// TOOL: load_assets
	s.mcpServer.AddTool(mcp.NewTool("load_assets",
		mcp.WithDescription("Load every registered object's assets. Individual failures stay retryable and never abort the batch."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		failed, err := s.engine.LoadAssets(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(`{"failed": %d, "progress": %d}`, failed, s.engine.Progress())), nil
	})
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.CanvasSnapshot, error) {
	return s.engine.Snapshot(), nil
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToggleResponse, error) {
	id, _ := args["id"].(string)
	active, err := s.engine.Toggle(id)
	if err != nil {
		return ToggleResponse{}, fmt.Errorf("toggle failed: %w", err)
	}
	return ToggleResponse{ID: id, Active: active}, nil
}

func (s *Server) handleSetActive(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ToggleResponse, error) {
	id, _ := args["id"].(string)
	active, _ := args["active"].(bool)

	var err error
	if active {
		err = s.engine.Activate(id)
	} else {
		err = s.engine.Deactivate(id)
	}
	if err != nil {
		return ToggleResponse{}, fmt.Errorf("set_active failed: %w", err)
	}
	return ToggleResponse{ID: id, Active: active}, nil
}

func (s *Server) handleSetPosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["id"].(string)
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)
	width, _ := args["width"].(float64)
	height, _ := args["height"].(float64)

	pos := domain.Position{X: x, Y: y, Width: width, Height: height}
	if err := s.engine.SetPosition(id, pos); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("set_position failed: %v", err)), nil
	}
	payload, _ := json.Marshal(pos)
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ClickResponse, error) {
	x, _ := args["x"].(float64)
	y, _ := args["y"].(float64)

	id, zone, err := s.engine.Click(x, y)
	if err != nil {
		return ClickResponse{}, fmt.Errorf("click failed: %w", err)
	}
	return ClickResponse{ID: id, Zone: string(zone)}, nil
}

func (s *Server) handleApplyPreset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := request.GetArguments()["name"].(string)
	applied, err := s.engine.ApplyPreset(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("apply_preset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"preset": %q, "applied": %d}`, name, applied)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: canvas://snapshot
	s.mcpServer.AddResource(mcp.NewResource("canvas://snapshot", "Current Canvas Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload, err := json.Marshal(s.engine.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canvas://snapshot",
				MIMEType: "application/json",
				Text:     string(payload),
			},
		}, nil
	})

	// EXPOSE: canvas://registry
	s.mcpServer.AddResource(mcp.NewResource("canvas://registry", "Registered Object Descriptors",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		payload, err := json.Marshal(s.engine.Objects())
		if err != nil {
			return nil, fmt.Errorf("failed to encode registry: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canvas://registry",
				MIMEType: "application/json",
				Text:     string(payload),
			},
		}, nil
	})
}
