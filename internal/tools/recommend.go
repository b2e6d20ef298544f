// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tejzpr/learnmap/internal/recommend"
)

// NewRecommendTool creates the learnmap_recommend tool definition
func NewRecommendTool() mcp.Tool {
	return mcp.NewTool("learnmap_recommend",
		mcp.WithDescription("Suggest learners with similar interests, unvisited locations whose activity resembles the learner's, or domains the learner has not explored yet."),
		mcp.WithString("learner_id",
			mcp.Required(),
			mcp.Description("Learner to recommend for"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("learners, locations or domains"),
			mcp.Enum(RecommendLearners, RecommendLocations, RecommendDomains),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum suggestions. Default: 5"),
		),
	)
}

// RecommendHandler handles the learnmap_recommend tool
func RecommendHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		learnerID, err := request.RequireString("learner_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := ctx.Recommend(learnerID, kind, limitArg(request, recommend.DefaultLimit))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}
