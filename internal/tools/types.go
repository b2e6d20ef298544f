// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/tejzpr/learnmap/internal/analysis"
	"github.com/tejzpr/learnmap/internal/config"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/git"
	"github.com/tejzpr/learnmap/internal/privacy"
	"github.com/tejzpr/learnmap/internal/store"
)

// Handler is the signature mcp-go expects for a tool callback
type Handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// HistorySource is implemented by backends that keep per-record revisions
type HistorySource interface {
	History(ctx context.Context, id string, limit int) ([]git.CommitInfo, error)
}

// ToolContext holds shared dependencies for all tools
type ToolContext struct {
	Store      *store.Store
	Anonymizer *privacy.Anonymizer
	Decoder    *experience.Decoder
	Analysis   analysis.Options
	// HotspotLimit caps hotspot and domain rankings when the caller gives no limit
	HotspotLimit int
	// History is nil when the backend is not versioned
	History HistorySource
	Logger  zerolog.Logger
}

// NewToolContext creates a tool context with default options
func NewToolContext(s *store.Store, log zerolog.Logger) *ToolContext {
	return &ToolContext{
		Store:      s,
		Anonymizer: privacy.NewAnonymizer(),
		Decoder:    experience.NewDecoder(experience.WithLogger(log)),
		Analysis:   analysis.Options{Location: time.Local},
		Logger:     log,
	}
}

// NewToolContextFromConfig applies the analysis and privacy sections of cfg
func NewToolContextFromConfig(s *store.Store, cfg *config.Config, log zerolog.Logger) (*ToolContext, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	tc := NewToolContext(s, log)
	if cfg.Decoder.Strict {
		tc.Decoder = experience.NewDecoder(experience.WithLogger(log), experience.Strict())
	}
	tc.Analysis = analysis.Options{
		MinStreakDays: cfg.Analysis.MinStreakDays,
		Location:      loc,
	}
	tc.HotspotLimit = cfg.Analysis.HotspotLimit
	tc.Anonymizer = &privacy.Anonymizer{
		Learner: privacy.LearnerOptions{
			HashIDs:         cfg.Privacy.HashIDs,
			RemoveNames:     cfg.Privacy.RemoveNames,
			RemoveInterests: cfg.Privacy.RemoveInterests,
		},
		Location: privacy.LocationOptions{
			FuzzCoordinates: cfg.Privacy.FuzzRadius > 0,
			FuzzRadius:      cfg.Privacy.FuzzRadius,
			RemoveAddress:   cfg.Privacy.RemoveAddress,
			GeneralizeType:  cfg.Privacy.GeneralizeType,
		},
	}
	return tc, nil
}

// limitArg reads an optional numeric limit, falling back to def
func limitArg(request mcp.CallToolRequest, def int) int {
	n := int(request.GetFloat("limit", float64(def)))
	if n < 0 {
		return def
	}
	return n
}

// jsonResult renders v as indented JSON text
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
