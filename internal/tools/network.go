// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tejzpr/learnmap/internal/graph"
)

// NewNetworkTool creates the learnmap_network tool definition
func NewNetworkTool() mcp.Tool {
	return mcp.NewTool("learnmap_network",
		mcp.WithDescription("Build the domain co-occurrence network or the learner collaboration network. Give 'node' to explore around one domain or person instead of returning the whole graph."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("domain or collaboration"),
			mcp.Enum(NetworkDomain, NetworkCollaboration),
		),
		mcp.WithString("node",
			mcp.Description("Domain or learner to explore from"),
		),
		mcp.WithNumber("max_hops",
			mcp.Description("Traversal depth from node (1-5). Default: 2"),
		),
	)
}

// NetworkHandler handles the learnmap_network tool
func NetworkHandler(ctx *ToolContext) Handler {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		network, err := ctx.Network(kind)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		node := request.GetString("node", "")
		if node == "" {
			return jsonResult(network)
		}

		if _, ok := network.Node(node); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("'%s' is not in the %s network", node, kind)), nil
		}
		maxHops := int(request.GetFloat("max_hops", 2))
		if maxHops < 1 {
			maxHops = 1
		}
		if maxHops > graph.MaxHops {
			maxHops = graph.MaxHops
		}

		return jsonResult(map[string]any{
			"node":      node,
			"neighbors": network.Neighbors(node),
			"reachable": network.Reachable(node, maxHops),
		})
	}
}
