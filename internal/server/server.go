// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tejzpr/learnmap/internal/tools"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// MCPServer wraps the mcp-go server with the learnmap tools
type MCPServer struct {
	mcpServer *server.MCPServer
	toolCtx   *tools.ToolContext
	toolNames []string
}

// NewMCPServer creates a new MCP server instance with every tool registered
func NewMCPServer(toolCtx *tools.ToolContext) *MCPServer {
	mcpServer := server.NewMCPServer(
		"Learnmap",
		Version,
		server.WithToolCapabilities(true),
	)

	srv := &MCPServer{
		mcpServer: mcpServer,
		toolCtx:   toolCtx,
	}
	srv.RegisterTools()
	return srv
}

// RegisterTools registers all MCP tools
func (s *MCPServer) RegisterTools() {
	tc := s.toolCtx

	// learnmap_capture: "I just learned something here"
	s.addTool(tools.NewCaptureTool(), tools.CaptureHandler(tc))

	// learnmap_find: lookups by location, domain or learner
	s.addTool(tools.NewFindTool(), tools.FindHandler(tc))

	// Rankings and the aggregate report
	s.addTool(tools.NewHotspotsTool(), tools.HotspotsHandler(tc))
	s.addTool(tools.NewTopDomainsTool(), tools.TopDomainsHandler(tc))
	s.addTool(tools.NewReportTool(), tools.ReportHandler(tc))

	// learnmap_patterns: "When do I learn best?"
	s.addTool(tools.NewPatternsTool(), tools.PatternsHandler(tc))

	// learnmap_network: domain and collaboration graphs
	s.addTool(tools.NewNetworkTool(), tools.NetworkHandler(tc))

	// learnmap_recommend: "Who or where should I learn from next?"
	s.addTool(tools.NewRecommendTool(), tools.RecommendHandler(tc))

	// learnmap_share: anonymized export
	s.addTool(tools.NewShareTool(), tools.ShareHandler(tc))

	// learnmap_history only works against a versioned store
	if tc.History != nil {
		s.addTool(tools.NewHistoryTool(), tools.HistoryHandler(tc))
	}
}

func (s *MCPServer) addTool(tool mcp.Tool, handler tools.Handler) {
	s.mcpServer.AddTool(tool, server.ToolHandlerFunc(handler))
	s.toolNames = append(s.toolNames, tool.Name)
}

// ToolNames lists the registered tools in registration order
func (s *MCPServer) ToolNames() []string {
	return append([]string(nil), s.toolNames...)
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolContext returns the shared tool dependencies
func (s *MCPServer) ToolContext() *tools.ToolContext {
	return s.toolCtx
}
