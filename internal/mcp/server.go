package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/paularlott/mcp"
	"github.com/sszokoly/bgwmon/internal/bgw"
	"github.com/sszokoly/bgwmon/internal/log"
	"github.com/sszokoly/bgwmon/internal/registry"
	"github.com/sszokoly/bgwmon/internal/storage"
)

// Server wraps the MCP server with gateway registry and persistence access
type Server struct {
	mcpServer   *mcp.Server
	registry    *registry.Registry
	storage     storage.Storage
	bearerToken string
}

// NewServer creates a new MCP server for branch gateway monitoring
func NewServer(reg *registry.Registry, store storage.Storage, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("bgwmon", "1.0.0"),
		registry:    reg,
		storage:     store,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

// registerTools registers all gateway monitoring tools
func (s *Server) registerTools() {
	// gateway_list - List all monitored gateways
	s.mcpServer.RegisterTool(
		mcp.NewTool("gateway_list", "List all monitored branch gateways with their current model, firmware and last seen time"),
		s.handleGatewayList,
	)

	// gateway_get - Full snapshot of a single gateway
	s.mcpServer.RegisterTool(
		mcp.NewTool("gateway_get", "Get the full derived field snapshot of a gateway by its LAN IP address",
			mcp.String("lan_ip", "Gateway LAN IP address", mcp.Required()),
		),
		s.handleGatewayGet,
	)

	// gateway_field - Single derived field
	s.mcpServer.RegisterTool(
		mcp.NewTool("gateway_field", "Get a single derived field of a gateway (e.g. model, fw, capture_status, inuse_dsp)",
			mcp.String("lan_ip", "Gateway LAN IP address", mcp.Required()),
			mcp.String("field", "Field name to read", mcp.Required()),
		),
		s.handleGatewayField,
	)

	// gateway_history - Persisted snapshots
	s.mcpServer.RegisterTool(
		mcp.NewTool("gateway_history", "List persisted snapshots of a gateway, newest first",
			mcp.String("lan_ip", "Gateway LAN IP address", mcp.Required()),
			mcp.String("limit", "Maximum number of snapshots to return (default 10)"),
		),
		s.handleGatewayHistory,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	// Check bearer token if configured
	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// Gateway tool handlers

func (s *Server) handleGatewayList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	gateways := s.registry.List()

	log.Debug("MCP gateway list request", "count", len(gateways))

	if len(gateways) == 0 {
		return mcp.NewToolResponseText("No gateways registered"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d gateways:\n\n", len(gateways)))
	for _, g := range gateways {
		result.WriteString(s.formatGatewaySummary(g))
		result.WriteString("\n")
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleGatewayGet(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	lanIP, err := req.String("lan_ip")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("lan_ip is required: " + err.Error())
	}

	g, err := s.registry.Get(lanIP)
	if err != nil {
		log.Debug("MCP gateway get failed", "lan_ip", lanIP, "error", err)
		return nil, mcp.NewToolErrorInternal("gateway not found: " + lanIP)
	}

	snapshot := g.Snapshot()
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Gateway %s:\n", lanIP))
	for _, name := range names {
		result.WriteString(fmt.Sprintf("  %s: %s\n", name, snapshot[name]))
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleGatewayField(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	lanIP, err := req.String("lan_ip")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("lan_ip is required: " + err.Error())
	}
	field, err := req.String("field")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("field is required: " + err.Error())
	}

	g, err := s.registry.Get(lanIP)
	if err != nil {
		return nil, mcp.NewToolErrorInternal("gateway not found: " + lanIP)
	}

	value, ok := g.Snapshot()[field]
	if !ok {
		return nil, mcp.NewToolErrorInvalidParams("unknown field: " + field)
	}

	return mcp.NewToolResponseText(fmt.Sprintf("%s: %s", field, value)), nil
}

func (s *Server) handleGatewayHistory(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	lanIP, err := req.String("lan_ip")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("lan_ip is required: " + err.Error())
	}

	limit := 10
	if raw := req.StringOr("limit", ""); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, mcp.NewToolErrorInvalidParams("limit must be a positive integer")
		}
	}

	snapshots, err := s.storage.ListSnapshots(lanIP, limit)
	if err != nil {
		log.Error("MCP gateway history failed", "lan_ip", lanIP, "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list snapshots: " + err.Error())
	}

	if len(snapshots) == 0 {
		return mcp.NewToolResponseText(fmt.Sprintf("No snapshots found for gateway: %s", lanIP)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d snapshots for %s:\n\n", len(snapshots), lanIP))
	for _, snap := range snapshots {
		result.WriteString(fmt.Sprintf("Taken: %s\n", snap.TakenAt.Format("2006-01-02 15:04:05")))
		result.WriteString(fmt.Sprintf("  model: %s  fw: %s  last_seen: %s\n",
			snap.Fields["model"], snap.Fields["fw"], snap.Fields["last_seen"]))
		result.WriteString(fmt.Sprintf("  cpu_util: %s  ram_util: %s  inuse_dsp: %s\n",
			snap.Fields["cpu_util"], snap.Fields["ram_util"], snap.Fields["inuse_dsp"]))
		result.WriteString("\n")
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) formatGatewaySummary(g *bgw.Gateway) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("LAN IP: %s\n", g.LANIP))
	if g.Name != "" {
		result.WriteString(fmt.Sprintf("Name: %s\n", g.Name))
	}
	if model := g.Field("model"); model != "NA" && model != "" {
		result.WriteString(fmt.Sprintf("Model: %s\n", model))
	}
	if fw := g.Field("fw"); fw != "NA" && fw != "" {
		result.WriteString(fmt.Sprintf("Firmware: %s\n", fw))
	}
	if g.LastSeen != "" {
		result.WriteString(fmt.Sprintf("Last seen: %s\n", g.LastSeen))
	}
	result.WriteString(fmt.Sprintf("Polls: %d\n", g.Polls))
	return result.String()
}
