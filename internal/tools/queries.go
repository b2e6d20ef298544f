// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tejzpr/learnmap/internal/analysis"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/graph"
	"github.com/tejzpr/learnmap/internal/privacy"
	"github.com/tejzpr/learnmap/internal/recommend"
)

// Network kinds
const (
	NetworkDomain        = "domain"
	NetworkCollaboration = "collaboration"
)

// Recommendation kinds
const (
	RecommendLearners  = "learners"
	RecommendLocations = "locations"
	RecommendDomains   = "domains"
)

// ErrUnknownKind is returned for an unsupported network or recommendation kind
var ErrUnknownKind = errors.New("unknown kind")

// Patterns summarizes the records of learnerID, or every record when empty.
// minStreakDays <= 0 keeps the configured value.
func (tc *ToolContext) Patterns(learnerID string, minStreakDays int) analysis.Summary {
	records := tc.Store.All()
	if learnerID != "" {
		records = tc.Store.FindByLearner(learnerID)
	}

	opts := tc.Analysis
	if minStreakDays > 0 {
		opts.MinStreakDays = minStreakDays
	}
	return analysis.Summarize(records, opts)
}

// Network builds the domain or collaboration network from a store snapshot
func (tc *ToolContext) Network(kind string) (*graph.Network, error) {
	switch strings.ToLower(kind) {
	case NetworkDomain, "domains":
		return analysis.DomainNetwork(tc.Store.All()), nil
	case NetworkCollaboration, "collaborations":
		return analysis.CollaborationNetwork(tc.Store.All()), nil
	default:
		return nil, fmt.Errorf("%w %q: must be domain or collaboration", ErrUnknownKind, kind)
	}
}

// Recommend answers one recommendation query for learnerID
func (tc *ToolContext) Recommend(learnerID, kind string, k int) (any, error) {
	engine := recommend.New(tc.Store.All())

	switch strings.ToLower(kind) {
	case RecommendLearners:
		return engine.SimilarLearners(learnerID, k), nil
	case RecommendLocations:
		return engine.Locations(learnerID, k), nil
	case RecommendDomains:
		return engine.Domains(learnerID, k), nil
	default:
		return nil, fmt.Errorf("%w %q: must be learners, locations or domains", ErrUnknownKind, kind)
	}
}

// Share builds a shareable dataset from every stored record
func (tc *ToolContext) Share(level string, includePrivate bool) ([]*experience.LearningExperience, error) {
	shareLevel, err := privacy.ParseShareLevel(level)
	if err != nil {
		return nil, err
	}
	return tc.Anonymizer.GenerateShareableDataset(tc.Store.All(), includePrivate, shareLevel), nil
}
