// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/learnmap/internal/analysis"
	"github.com/tejzpr/learnmap/internal/config"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/graph"
	"github.com/tejzpr/learnmap/internal/privacy"
	"github.com/tejzpr/learnmap/internal/recommend"
	"github.com/tejzpr/learnmap/internal/storage"
	"github.com/tejzpr/learnmap/internal/store"
)

func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return ""
}

func call(t *testing.T, handler Handler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, "tool failed: %s", getResultText(result))
	require.NoError(t, json.Unmarshal([]byte(getResultText(result)), v))
}

func setupToolContext(t *testing.T) *ToolContext {
	t.Helper()
	tc := NewToolContext(store.New(storage.NewMemoryStore()), zerolog.Nop())

	capture := CaptureHandler(tc)
	for _, args := range []map[string]any{
		{"learner_id": "alice", "location": "Lab A", "description": "built a robot arm", "domains": []any{"software", "design"}, "connections": []any{"bob"}},
		{"learner_id": "bob", "location": "Lab A", "description": "debated sensor ethics", "domains": []any{"software", "ethics"}},
		{"learner_id": "carol", "location": "Cafe", "description": "sketched a melody", "domains": []any{"music", "design"}, "privacy": "private"},
	} {
		result := call(t, capture, args)
		require.False(t, result.IsError, "capture failed: %s", getResultText(result))
	}
	require.Equal(t, 3, tc.Store.Len())
	return tc
}

func TestCaptureHandler_ShortForm(t *testing.T) {
	tc := NewToolContext(store.New(storage.NewMemoryStore()), zerolog.Nop())

	result := call(t, CaptureHandler(tc), map[string]any{
		"learner_id":  "alice",
		"location":    "Library",
		"description": "read about tides",
		"domains":     []any{"oceanography"},
	})

	var out struct {
		ID    string `json:"id"`
		Total int    `json:"total"`
	}
	decode(t, result, &out)
	assert.Contains(t, out.ID, experience.IDPrefix)
	assert.Equal(t, 1, out.Total)

	rec, ok := tc.Store.Get(out.ID)
	require.True(t, ok)
	assert.Equal(t, "observation", rec.ExperienceData.Type)
	assert.Equal(t, []string{"oceanography"}, rec.ExperienceData.Domains)
}

func TestCaptureHandler_FullRecord(t *testing.T) {
	tc := NewToolContext(store.New(storage.NewMemoryStore()), zerolog.Nop())

	result := call(t, CaptureHandler(tc), map[string]any{
		"record": map[string]any{
			"id":      "exp_full",
			"learner": map[string]any{"id": "dave"},
			"context": map[string]any{
				"location": map[string]any{"name": "Park"},
			},
			"experienceData": map[string]any{
				"type":        "conversation",
				"description": "talked about birds",
				"domains":     []any{"ornithology"},
			},
		},
	})

	var out struct {
		ID string `json:"id"`
	}
	decode(t, result, &out)
	assert.Equal(t, "exp_full", out.ID)
}

func TestCaptureHandler_Errors(t *testing.T) {
	tc := NewToolContext(store.New(storage.NewMemoryStore()), zerolog.Nop())
	handler := CaptureHandler(tc)

	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{"no record or learner", map[string]any{}, "learner_id"},
		{"missing description", map[string]any{"learner_id": "a", "location": "x"}, "description"},
		{"invalid record", map[string]any{"record": map[string]any{"learner": map[string]any{"id": "a"}}}, "invalid record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, handler, tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, getResultText(result), tt.contains)
		})
	}
	assert.Equal(t, 0, tc.Store.Len())
}

func TestFindHandler(t *testing.T) {
	tc := setupToolContext(t)
	handler := FindHandler(tc)

	var out struct {
		Total   int                             `json:"total"`
		Records []experience.LearningExperience `json:"records"`
	}
	decode(t, call(t, handler, map[string]any{"location": "Lab A"}), &out)
	assert.Equal(t, 2, out.Total)

	decode(t, call(t, handler, map[string]any{"domain": "design", "limit": float64(1)}), &out)
	assert.Equal(t, 2, out.Total)
	assert.Len(t, out.Records, 1)

	decode(t, call(t, handler, map[string]any{"learner_id": "nobody"}), &out)
	assert.Equal(t, 0, out.Total)

	result := call(t, handler, map[string]any{"location": "Lab A", "domain": "design"})
	assert.True(t, result.IsError)
	result = call(t, handler, map[string]any{})
	assert.True(t, result.IsError)
}

func TestRankingHandlers(t *testing.T) {
	tc := setupToolContext(t)

	var hotspots []analysis.Hotspot
	decode(t, call(t, HotspotsHandler(tc), nil), &hotspots)
	require.Len(t, hotspots, 2)
	assert.Equal(t, "Lab A", hotspots[0].Location)
	assert.Equal(t, 3, hotspots[0].Diversity)

	decode(t, call(t, HotspotsHandler(tc), map[string]any{"limit": float64(1)}), &hotspots)
	assert.Len(t, hotspots, 1)

	var domains []analysis.DomainCount
	decode(t, call(t, TopDomainsHandler(tc), map[string]any{"limit": float64(2)}), &domains)
	assert.Equal(t, []analysis.DomainCount{{Domain: "design", Count: 2}, {Domain: "software", Count: 2}}, domains)

	var report store.Report
	decode(t, call(t, ReportHandler(tc), nil), &report)
	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 2, report.Locations)
	assert.Equal(t, 3, report.Learners)
	assert.Equal(t, 3, report.Interdisciplinary)
}

func TestPatternsHandler(t *testing.T) {
	tc := setupToolContext(t)

	var summary analysis.Summary
	decode(t, call(t, PatternsHandler(tc), nil), &summary)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Len(t, summary.DayOfWeek, 7)
	assert.Len(t, summary.TimeOfDay, 4)

	decode(t, call(t, PatternsHandler(tc), map[string]any{"learner_id": "alice"}), &summary)
	assert.Equal(t, 1, summary.TotalRecords)
	assert.Equal(t, 2, summary.Diversity)
}

func TestNetworkHandler(t *testing.T) {
	tc := setupToolContext(t)
	handler := NetworkHandler(tc)

	var network graph.Network
	decode(t, call(t, handler, map[string]any{"kind": "domain"}), &network)
	assert.Len(t, network.Nodes, 4)
	_, ok := network.Edge("software", "design")
	assert.True(t, ok)

	decode(t, call(t, handler, map[string]any{"kind": "collaboration"}), &network)
	_, ok = network.Edge("alice", "bob")
	assert.True(t, ok)

	var around struct {
		Node      string           `json:"node"`
		Neighbors []graph.Neighbor `json:"neighbors"`
		Reachable []graph.Visit    `json:"reachable"`
	}
	decode(t, call(t, handler, map[string]any{"kind": "domain", "node": "ethics", "max_hops": float64(1)}), &around)
	assert.Equal(t, []graph.Neighbor{{ID: "software", Weight: 1}}, around.Neighbors)
	assert.Equal(t, []graph.Visit{{ID: "ethics", Depth: 0}, {ID: "software", Depth: 1}}, around.Reachable)

	assert.True(t, call(t, handler, map[string]any{"kind": "roads"}).IsError)
	assert.True(t, call(t, handler, map[string]any{"kind": "domain", "node": "alchemy"}).IsError)
	assert.True(t, call(t, handler, map[string]any{}).IsError)
}

func TestRecommendHandler(t *testing.T) {
	tc := setupToolContext(t)
	handler := RecommendHandler(tc)

	var learners []recommend.LearnerMatch
	decode(t, call(t, handler, map[string]any{"learner_id": "alice", "kind": "learners"}), &learners)
	require.Len(t, learners, 2)
	assert.Equal(t, "bob", learners[0].LearnerID)

	var locations []recommend.LocationMatch
	decode(t, call(t, handler, map[string]any{"learner_id": "alice", "kind": "locations"}), &locations)
	require.Len(t, locations, 1)
	assert.Equal(t, "Cafe", locations[0].Location)

	var domains []recommend.DomainSuggestion
	decode(t, call(t, handler, map[string]any{"learner_id": "alice", "kind": "domains", "limit": float64(1)}), &domains)
	assert.Len(t, domains, 1)

	assert.True(t, call(t, handler, map[string]any{"learner_id": "alice", "kind": "friends"}).IsError)
	assert.True(t, call(t, handler, map[string]any{"kind": "learners"}).IsError)
}

func TestShareHandler(t *testing.T) {
	tc := setupToolContext(t)
	handler := ShareHandler(tc)

	var out struct {
		Count   int                             `json:"count"`
		Records []experience.LearningExperience `json:"records"`
	}
	decode(t, call(t, handler, nil), &out)
	assert.Equal(t, 2, out.Count)
	for _, rec := range out.Records {
		assert.Contains(t, rec.Learner.ID, privacy.AnonPrefix)
		assert.Equal(t, experience.PrivacyAnonymous, rec.Privacy.Level)
	}

	decode(t, call(t, handler, map[string]any{"level": "none", "include_private": true}), &out)
	assert.Equal(t, 3, out.Count)

	assert.True(t, call(t, handler, map[string]any{"level": "some"}).IsError)
}

func TestHistoryHandler(t *testing.T) {
	fs, err := storage.NewFileStore(t.TempDir(), storage.WithGit())
	require.NoError(t, err)
	tc := NewToolContext(store.New(fs), zerolog.Nop())
	tc.History = fs

	var out struct {
		ID string `json:"id"`
	}
	decode(t, call(t, CaptureHandler(tc), map[string]any{
		"learner_id": "alice", "location": "Beach", "description": "counted crabs",
	}), &out)

	result := call(t, HistoryHandler(tc), map[string]any{"id": out.ID})
	require.False(t, result.IsError, getResultText(result))
	assert.Contains(t, getResultText(result), "feat: Capture experience '"+out.ID+"'")

	assert.True(t, call(t, HistoryHandler(tc), map[string]any{"id": "exp_missing"}).IsError)

	tc.History = nil
	assert.True(t, call(t, HistoryHandler(tc), map[string]any{"id": out.ID}).IsError)
}

func TestNewToolContextFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Analysis.Timezone = "UTC"
	cfg.Analysis.MinStreakDays = 4
	cfg.Privacy.FuzzRadius = 0

	tc, err := NewToolContextFromConfig(store.New(storage.NewMemoryStore()), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 4, tc.Analysis.MinStreakDays)
	assert.Equal(t, "UTC", tc.Analysis.Location.String())
	assert.False(t, tc.Anonymizer.Location.FuzzCoordinates)
	assert.True(t, tc.Anonymizer.Learner.HashIDs)

	cfg.Analysis.Timezone = "Mars/Olympus"
	_, err = NewToolContextFromConfig(store.New(storage.NewMemoryStore()), cfg, zerolog.Nop())
	assert.Error(t, err)
}
