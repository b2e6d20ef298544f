// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package privacy

import (
	"fmt"

	"github.com/tejzpr/learnmap/internal/experience"
)

// PersonPseudonym is the positional stand-in for the i-th connection (1-based)
func PersonPseudonym(i int) string {
	return fmt.Sprintf("person-%d", i)
}

// RemovePII replaces connections with positional pseudonyms and sanitizes
// the situation, description and every outcome string
func RemovePII(rec *experience.LearningExperience) *experience.LearningExperience {
	out := rec.Clone()

	for i := range out.Context.Connections {
		out.Context.Connections[i] = PersonPseudonym(i + 1)
	}

	out.Context.Situation = SanitizeText(out.Context.Situation)
	out.ExperienceData.Description = SanitizeText(out.ExperienceData.Description)

	if o := out.ExperienceData.Outcome; o != nil {
		sanitizeAll(o.ConnectionsMade)
		sanitizeAll(o.NextQuestions)
		sanitizeAll(o.Artifacts)
	}
	return out
}

func sanitizeAll(values []string) {
	for i, v := range values {
		values[i] = SanitizeText(v)
	}
}
