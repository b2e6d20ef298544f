// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// NewPatternsTool creates the learnmap_patterns tool definition
func NewPatternsTool() mcp.Tool {
	return mcp.NewTool("learnmap_patterns",
		mcp.WithDescription("Describe when learning happens: time of day and day of week distributions, learning streaks, interdisciplinary count and domain diversity."),
		mcp.WithString("learner_id",
			mcp.Description("Restrict the analysis to one learner. Default: everyone"),
		),
		mcp.WithNumber("min_streak_days",
			mcp.Description("Shortest run of consecutive days reported as a streak. Default: 3"),
		),
	)
}

// PatternsHandler handles the learnmap_patterns tool
func PatternsHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		learnerID := request.GetString("learner_id", "")
		minDays := int(request.GetFloat("min_streak_days", 0))
		return jsonResult(ctx.Patterns(learnerID, minDays))
	}
}
