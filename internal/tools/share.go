// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewShareTool creates the learnmap_share tool definition
func NewShareTool() mcp.Tool {
	return mcp.NewTool("learnmap_share",
		mcp.WithDescription("Export the map as a shareable dataset. 'full' pseudonymizes learners, coarsens locations and strips PII; 'partial' only pseudonymizes learners; 'none' copies records unchanged. Private records are excluded unless include_private is set."),
		mcp.WithString("level",
			mcp.Description("full, partial or none. Default: full"),
			mcp.Enum("full", "partial", "none"),
		),
		mcp.WithBoolean("include_private",
			mcp.Description("Include records marked private. Default: false"),
		),
	)
}

// ShareHandler handles the learnmap_share tool
func ShareHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := ctx.Share(request.GetString("level", ""), request.GetBool("include_private", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(map[string]any{
			"count":   len(records),
			"records": records,
		})
	}
}
