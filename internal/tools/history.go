// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewHistoryTool creates the learnmap_history tool definition
func NewHistoryTool() mcp.Tool {
	return mcp.NewTool("learnmap_history",
		mcp.WithDescription("Show when an experience was captured and every later revision. Only available with the git-backed file store."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Experience id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return. Default: 10"),
		),
	)
}

// HistoryHandler handles the learnmap_history tool
func HistoryHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if ctx.History == nil {
			return mcp.NewToolResultError("history is not available: storage is not versioned"), nil
		}

		commits, err := ctx.History.History(c, id, limitArg(request, 10))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
		}
		if len(commits) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No history found for '%s'", id)), nil
		}

		var output strings.Builder
		output.WriteString(fmt.Sprintf("## History: %s\n\n", id))
		for _, commit := range commits {
			output.WriteString(fmt.Sprintf("- **%s** %s (%s)\n",
				commit.When.Format("2006-01-02 15:04"), commit.Message, shortHash(commit.Hash)))
		}
		return mcp.NewToolResultText(output.String()), nil
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
