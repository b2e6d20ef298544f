// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package privacy pseudonymizes learners, coarsens locations and scrubs
// free text. Every transform returns a new record; inputs are not modified.
//
// The scrubbing is best effort. It is not a security boundary for adversarial input.
package privacy

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/tejzpr/learnmap/internal/experience"
)

// AnonPrefix starts every pseudonymous learner id
const AnonPrefix = "anon_"

// LearnerOptions controls AnonymizeLearner
type LearnerOptions struct {
	PreserveIDs     bool
	HashIDs         bool
	RemoveNames     bool
	RemoveInterests bool
}

// DefaultLearnerOptions hashes ids, strips names and keeps interests
func DefaultLearnerOptions() LearnerOptions {
	return LearnerOptions{
		HashIDs:     true,
		RemoveNames: true,
	}
}

// HashLearnerID returns a stable pseudonym for id using 32-bit FNV-1a.
// It is not collision resistant and is not meant to resist reversal.
func HashLearnerID(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return fmt.Sprintf("%s%08x", AnonPrefix, h.Sum32())
}

// RandomLearnerID returns a fresh unlinkable pseudonym
func RandomLearnerID() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return AnonPrefix + token[:8]
}

// AnonymizeLearner replaces the learner id and optionally strips name and interests
func AnonymizeLearner(rec *experience.LearningExperience, opts LearnerOptions) *experience.LearningExperience {
	out := rec.Clone()

	switch {
	case opts.PreserveIDs:
	case opts.HashIDs:
		out.Learner.ID = HashLearnerID(rec.Learner.ID)
	default:
		out.Learner.ID = RandomLearnerID()
	}

	if opts.RemoveNames {
		out.Learner.Name = ""
	}
	if opts.RemoveInterests {
		out.Learner.Interests = nil
	}
	return out
}
