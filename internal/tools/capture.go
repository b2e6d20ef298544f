// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tejzpr/learnmap/internal/experience"
)

// NewCaptureTool creates the learnmap_capture tool definition
func NewCaptureTool() mcp.Tool {
	return mcp.NewTool("learnmap_capture",
		mcp.WithDescription("Record a learning experience. Pass a full record object, or the short form fields (learner_id, location, type, description, domains) for a quick capture."),
		mcp.WithObject("record",
			mcp.Description("Full learning experience record: {learner, context: {location}, experienceData, outcomes?, privacy?, tags?}"),
		),
		mcp.WithString("learner_id",
			mcp.Description("Learner id (short form)"),
		),
		mcp.WithString("location",
			mcp.Description("Location name (short form)"),
		),
		mcp.WithString("type",
			mcp.Description("Experience type, e.g. observation, conversation, workshop (short form)"),
		),
		mcp.WithString("description",
			mcp.Description("What happened (short form)"),
		),
		mcp.WithArray("domains",
			mcp.Description("Knowledge domains touched by the experience (short form)"),
		),
		mcp.WithArray("connections",
			mcp.Description("People met during the experience (short form)"),
		),
		mcp.WithString("privacy",
			mcp.Description("private, anonymous or public. Default: anonymous"),
		),
	)
}

// CaptureHandler handles the learnmap_capture tool
func CaptureHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, ok := request.GetArguments()["record"].(map[string]any)
		if !ok {
			var err error
			raw, err = shortFormRecord(request)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		id, err := ctx.Store.CaptureRaw(c, raw)
		if err != nil {
			var verr *experience.ValidationError
			if errors.As(err, &verr) {
				return mcp.NewToolResultError(fmt.Sprintf("invalid record: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to capture experience: %v", err)), nil
		}

		ctx.Logger.Info().Str("id", id).Msg("captured experience")
		return jsonResult(map[string]any{
			"id":    id,
			"total": ctx.Store.Len(),
		})
	}
}

// shortFormRecord builds a raw record from the flat capture arguments
func shortFormRecord(request mcp.CallToolRequest) (map[string]any, error) {
	learnerID, err := request.RequireString("learner_id")
	if err != nil {
		return nil, fmt.Errorf("either record or learner_id is required: %w", err)
	}
	location, err := request.RequireString("location")
	if err != nil {
		return nil, err
	}
	description, err := request.RequireString("description")
	if err != nil {
		return nil, err
	}

	raw := map[string]any{
		"learner": map[string]any{"id": learnerID},
		"context": map[string]any{
			"location":    map[string]any{"name": location},
			"connections": toAny(request.GetStringSlice("connections", []string{})),
		},
		"experienceData": map[string]any{
			"type":        request.GetString("type", "observation"),
			"description": description,
			"domains":     toAny(request.GetStringSlice("domains", []string{})),
		},
	}
	if level := request.GetString("privacy", ""); level != "" {
		raw["privacy"] = map[string]any{"level": level}
	}
	return raw, nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
