// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewHotspotsTool creates the learnmap_hotspots tool definition
func NewHotspotsTool() mcp.Tool {
	return mcp.NewTool("learnmap_hotspots",
		mcp.WithDescription("Rank locations by how many distinct knowledge domains were observed there."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum locations to return. 0 returns all"),
		),
	)
}

// HotspotsHandler handles the learnmap_hotspots tool
func HotspotsHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ctx.Store.Hotspots(limitArg(request, ctx.HotspotLimit)))
	}
}

// NewTopDomainsTool creates the learnmap_top_domains tool definition
func NewTopDomainsTool() mcp.Tool {
	return mcp.NewTool("learnmap_top_domains",
		mcp.WithDescription("Rank knowledge domains by the number of experiences tagged with them."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum domains to return. 0 returns all"),
		),
	)
}

// TopDomainsHandler handles the learnmap_top_domains tool
func TopDomainsHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ctx.Store.TopDomains(limitArg(request, ctx.HotspotLimit)))
	}
}

// NewReportTool creates the learnmap_report tool definition
func NewReportTool() mcp.Tool {
	return mcp.NewTool("learnmap_report",
		mcp.WithDescription("Summarize the whole map: record, location, domain and learner counts, interdisciplinary experiences, hotspots and top domains."),
	)
}

// ReportHandler handles the learnmap_report tool
func ReportHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ctx.Store.Report())
	}
}
