// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tejzpr/learnmap/internal/experience"
)

// NewFindTool creates the learnmap_find tool definition
func NewFindTool() mcp.Tool {
	return mcp.NewTool("learnmap_find",
		mcp.WithDescription("Look up captured experiences by location, domain or learner. Exactly one filter is required."),
		mcp.WithString("location",
			mcp.Description("Exact location name"),
		),
		mcp.WithString("domain",
			mcp.Description("Exact domain name"),
		),
		mcp.WithString("learner_id",
			mcp.Description("Learner id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to return. Default: all"),
		),
	)
}

// FindHandler handles the learnmap_find tool
func FindHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		location := request.GetString("location", "")
		domain := request.GetString("domain", "")
		learnerID := request.GetString("learner_id", "")

		filters := 0
		for _, f := range []string{location, domain, learnerID} {
			if f != "" {
				filters++
			}
		}
		if filters != 1 {
			return mcp.NewToolResultError("exactly one of location, domain or learner_id is required"), nil
		}

		var records []*experience.LearningExperience
		switch {
		case location != "":
			records = ctx.Store.FindByLocation(location)
		case domain != "":
			records = ctx.Store.FindByDomain(domain)
		default:
			records = ctx.Store.FindByLearner(learnerID)
		}

		total := len(records)
		if limit := limitArg(request, 0); limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		return jsonResult(map[string]any{
			"total":   total,
			"records": records,
		})
	}
}
