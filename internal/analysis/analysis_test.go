// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/graph"
)

func record(id, learner, location, ts string, domains ...string) *experience.LearningExperience {
	return &experience.LearningExperience{
		ID:        id,
		Timestamp: ts,
		Version:   experience.CurrentVersion,
		Learner:   experience.Learner{ID: learner},
		Context: experience.Context{
			Location: experience.Location{Name: location},
		},
		ExperienceData: experience.ExperienceData{
			Type:        "observation",
			Description: "something",
			Domains:     domains,
		},
	}
}

func TestInterdisciplinary(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "physics", "art"),
		record("2", "u", "Lab", "2024-01-01T10:00:00Z", "physics", "physics"),
		record("3", "u", "Lab", "2024-01-01T10:00:00Z"),
	}

	assert.Equal(t, 1, CountInterdisciplinary(records))
	got := Interdisciplinary(records)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestDiversity_DoesNotDoubleCount(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "math", "music"),
		record("2", "u", "Lab", "2024-01-02T10:00:00Z", "math", "math"),
	}
	assert.Equal(t, 2, Diversity(records))
	assert.Equal(t, 0, Diversity(nil))
}

func TestHourBucket(t *testing.T) {
	tests := []struct {
		hour int
		want experience.TimeOfDay
	}{
		{0, experience.TimeNight},
		{5, experience.TimeNight},
		{6, experience.TimeMorning},
		{11, experience.TimeMorning},
		{12, experience.TimeAfternoon},
		{17, experience.TimeAfternoon},
		{18, experience.TimeEvening},
		{21, experience.TimeEvening},
		{22, experience.TimeNight},
		{23, experience.TimeNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HourBucket(tt.hour), "hour %d", tt.hour)
	}
}

func TestTimeOfDayDistribution(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T06:00:00Z", "math"),
		record("2", "u", "Lab", "2024-01-01T11:59:00Z", "art"),
		record("3", "u", "Lab", "2024-01-01T22:30:00Z", "music"),
		record("4", "u", "Lab", "not-a-time", "ignored"),
	}

	dist := TimeOfDayDistribution(records, time.UTC)
	require.Len(t, dist, 4)
	assert.Equal(t, Bucket{Count: 2, Domains: []string{"art", "math"}}, dist[experience.TimeMorning])
	assert.Equal(t, Bucket{Count: 1, Domains: []string{"music"}}, dist[experience.TimeNight])
	assert.Equal(t, 0, dist[experience.TimeAfternoon].Count)
	assert.Empty(t, dist[experience.TimeEvening].Domains)
}

func TestTimeOfDayDistribution_UsesLocation(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "math"),
	}
	plusTen := time.FixedZone("plus10", 10*60*60)

	dist := TimeOfDayDistribution(records, plusTen)
	assert.Equal(t, 1, dist[experience.TimeEvening].Count)
}

func TestDayOfWeekDistribution_AllKeysPresent(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "math"),
		record("2", "u", "Lab", "2024-01-01T15:00:00Z", "art"),
	}

	dist := DayOfWeekDistribution(records, time.UTC)
	require.Len(t, dist, 7)
	for _, day := range Weekdays {
		assert.Contains(t, dist, day)
	}
	assert.Equal(t, Bucket{Count: 2, Domains: []string{"art", "math"}}, dist["Monday"])
	assert.Equal(t, 0, dist["Sunday"].Count)
}

func TestStreaks(t *testing.T) {
	base := []*experience.LearningExperience{
		record("3", "u", "Lab", "2024-03-03T09:00:00Z"),
		record("1", "u", "Lab", "2024-03-01T09:00:00Z"),
		record("2", "u", "Lab", "2024-03-02T09:00:00Z"),
	}

	streaks := Streaks(base, 2)
	require.Len(t, streaks, 1)
	assert.Equal(t, Streak{
		Start: "2024-03-01T09:00:00Z",
		End:   "2024-03-03T09:00:00Z",
		Days:  3,
		Count: 3,
	}, streaks[0])

	isolated := append(base, record("4", "u", "Lab", "2024-03-07T09:00:00Z"))
	assert.Len(t, Streaks(isolated, 2), 1)

	paired := append(isolated, record("5", "u", "Lab", "2024-03-08T09:00:00Z"))
	streaks = Streaks(paired, 2)
	require.Len(t, streaks, 2)
	assert.Equal(t, "2024-03-07T09:00:00Z", streaks[1].Start)
	assert.Equal(t, 2, streaks[1].Count)
}

func TestStreaks_WholeDayDifference(t *testing.T) {
	// 47 hours apart is one whole day
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-03-01T00:00:00Z"),
		record("2", "u", "Lab", "2024-03-02T23:00:00Z"),
		record("3", "u", "Lab", "2024-03-04T22:00:00Z"),
	}
	streaks := Streaks(records, 0)
	require.Len(t, streaks, 1)
	assert.Equal(t, 3, streaks[0].Days)
}

func TestStreaks_Empty(t *testing.T) {
	assert.Empty(t, Streaks(nil, 3))
	assert.NotNil(t, Streaks(nil, 3))
}

func TestHotspots(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab A", "2024-01-01T10:00:00Z", "software", "design"),
		record("2", "v", "Lab A", "2024-01-02T10:00:00Z", "software", "ethics"),
		record("3", "u", "Cafe", "2024-01-03T10:00:00Z", "art", "music", "math"),
		record("4", "u", "Park", "2024-01-03T10:00:00Z", "art"),
	}

	hotspots := Hotspots(records, 0)
	require.Len(t, hotspots, 3)
	assert.Equal(t, Hotspot{Location: "Cafe", Diversity: 3, Count: 1, Domains: []string{"art", "math", "music"}}, hotspots[0])
	assert.Equal(t, "Lab A", hotspots[1].Location)
	assert.Equal(t, 2, hotspots[1].Count)
	assert.Equal(t, "Park", hotspots[2].Location)

	assert.Len(t, Hotspots(records, 1), 1)
}

func TestTopDomains(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "software", "design", "software"),
		record("2", "u", "Lab", "2024-01-01T10:00:00Z", "software", "art"),
	}

	top := TopDomains(records, 2)
	assert.Equal(t, []DomainCount{{"software", 2}, {"art", 1}}, top)
}

func TestDomainNetwork(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-01-01T10:00:00Z", "physics", "art", "art"),
		record("2", "u", "Lab", "2024-01-01T10:00:00Z", "art", "physics", "math"),
	}

	n := DomainNetwork(records)
	require.Len(t, n.Nodes, 3)
	assert.Equal(t, graph.Node{ID: "art", Weight: 2}, n.Nodes[0])
	assert.Equal(t, graph.Node{ID: "physics", Weight: 2}, n.Nodes[1])

	edge, ok := n.Edge("physics", "art")
	require.True(t, ok)
	assert.Equal(t, graph.Edge{Source: "art", Target: "physics", Weight: 2}, edge)

	edge, ok = n.Edge("math", "physics")
	require.True(t, ok)
	assert.Equal(t, 1, edge.Weight)
	assert.Len(t, n.Edges, 3)
}

func TestCollaborationNetwork(t *testing.T) {
	alice := record("1", "alice", "Lab", "2024-01-01T10:00:00Z")
	alice.Context.Connections = []string{"bob", "Carol", "bob"}
	alice2 := record("2", "alice", "Lab", "2024-01-02T10:00:00Z")
	alice2.Context.Connections = []string{"bob"}
	bob := record("3", "bob", "Cafe", "2024-01-03T10:00:00Z")

	n := CollaborationNetwork([]*experience.LearningExperience{alice, alice2, bob})

	node, ok := n.Node("alice")
	require.True(t, ok)
	assert.Equal(t, 2, node.Weight)
	node, ok = n.Node("bob")
	require.True(t, ok)
	assert.Equal(t, 1, node.Weight)
	node, ok = n.Node("Carol")
	require.True(t, ok)
	assert.Equal(t, 0, node.Weight)

	edge, ok := n.Edge("bob", "alice")
	require.True(t, ok)
	assert.Equal(t, graph.Edge{Source: "alice", Target: "bob", Weight: 2}, edge)
	assert.Len(t, n.Edges, 2)
}

func TestSummarize(t *testing.T) {
	records := []*experience.LearningExperience{
		record("1", "u", "Lab", "2024-03-01T09:00:00Z", "math", "art"),
		record("2", "u", "Lab", "2024-03-02T09:00:00Z", "math"),
		record("3", "u", "Lab", "2024-03-03T09:00:00Z", "music"),
	}

	s := Summarize(records, Options{Location: time.UTC})
	assert.Equal(t, 3, s.TotalRecords)
	assert.Equal(t, 1, s.Interdisciplinary)
	assert.Equal(t, 3, s.Diversity)
	assert.Equal(t, 3, s.TimeOfDay[experience.TimeMorning].Count)
	assert.Len(t, s.DayOfWeek, 7)
	require.Len(t, s.Streaks, 1)
}

func TestAnalysis_DoesNotMutate(t *testing.T) {
	rec := record("1", "u", "Lab", "2024-03-01T09:00:00Z", "math", "math", "art")
	before := rec.Clone()

	_ = Summarize([]*experience.LearningExperience{rec}, Options{})
	_ = DomainNetwork([]*experience.LearningExperience{rec})
	_ = Hotspots([]*experience.LearningExperience{rec}, 0)

	assert.Equal(t, before, rec)
}
