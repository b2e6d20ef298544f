// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package privacy

import (
	"fmt"
	"strings"

	"github.com/tejzpr/learnmap/internal/experience"
)

// ShareLevel selects how much of a record is transformed before release
type ShareLevel string

const (
	ShareFull    ShareLevel = "full"
	SharePartial ShareLevel = "partial"
	ShareNone    ShareLevel = "none"
)

// ParseShareLevel accepts full, partial or none, case-insensitively
func ParseShareLevel(s string) (ShareLevel, error) {
	switch level := ShareLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case ShareFull, SharePartial, ShareNone:
		return level, nil
	case "":
		return ShareFull, nil
	default:
		return "", fmt.Errorf("unknown share level %q: must be one of full, partial, none", s)
	}
}

// Anonymizer applies the transforms with a fixed set of options
type Anonymizer struct {
	Learner  LearnerOptions
	Location LocationOptions
}

// NewAnonymizer returns an anonymizer with default options
func NewAnonymizer() *Anonymizer {
	return &Anonymizer{
		Learner:  DefaultLearnerOptions(),
		Location: DefaultLocationOptions(),
	}
}

// FullyAnonymize pseudonymizes the learner, coarsens the location, removes
// PII and marks the result anonymous
func (a *Anonymizer) FullyAnonymize(rec *experience.LearningExperience) *experience.LearningExperience {
	out := AnonymizeLearner(rec, a.Learner)
	out = AnonymizeLocation(out, a.Location)
	out = RemovePII(out)

	if out.Privacy == nil {
		out.Privacy = &experience.Privacy{}
	}
	out.Privacy.Level = experience.PrivacyAnonymous
	return out
}

// GenerateShareableDataset filters out private records unless includePrivate
// is set, then transforms each remaining record according to level
func (a *Anonymizer) GenerateShareableDataset(records []*experience.LearningExperience, includePrivate bool, level ShareLevel) []*experience.LearningExperience {
	filtered := FilterByPrivacyLevel(records, includePrivate)

	out := make([]*experience.LearningExperience, 0, len(filtered))
	for _, rec := range filtered {
		switch level {
		case ShareFull:
			out = append(out, a.FullyAnonymize(rec))
		case SharePartial:
			out = append(out, AnonymizeLearner(rec, a.Learner))
		default:
			out = append(out, rec.Clone())
		}
	}
	return out
}

// FullyAnonymize applies the default anonymizer
func FullyAnonymize(rec *experience.LearningExperience) *experience.LearningExperience {
	return NewAnonymizer().FullyAnonymize(rec)
}

// GenerateShareableDataset applies the default anonymizer
func GenerateShareableDataset(records []*experience.LearningExperience, includePrivate bool, level ShareLevel) []*experience.LearningExperience {
	return NewAnonymizer().GenerateShareableDataset(records, includePrivate, level)
}

// FilterByPrivacyLevel drops private records unless includePrivate is set.
// Records without a privacy block count as anonymous.
func FilterByPrivacyLevel(records []*experience.LearningExperience, includePrivate bool) []*experience.LearningExperience {
	out := make([]*experience.LearningExperience, 0, len(records))
	for _, rec := range records {
		if rec.PrivacyLevel() == experience.PrivacyPrivate && !includePrivate {
			continue
		}
		out = append(out, rec)
	}
	return out
}
