// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package analysis

import (
	"time"

	"github.com/tejzpr/learnmap/internal/experience"
)

// Options tunes Summarize
type Options struct {
	MinStreakDays int
	Location      *time.Location
}

// Summary bundles the pattern analyses for one snapshot
type Summary struct {
	TotalRecords      int                             `json:"totalRecords"`
	Interdisciplinary int                             `json:"interdisciplinary"`
	Diversity         int                             `json:"diversity"`
	TimeOfDay         map[experience.TimeOfDay]Bucket `json:"timeOfDay"`
	DayOfWeek         map[string]Bucket               `json:"dayOfWeek"`
	Streaks           []Streak                        `json:"streaks"`
}

// Summarize runs every pattern analysis over records
func Summarize(records []*experience.LearningExperience, opts Options) Summary {
	return Summary{
		TotalRecords:      len(records),
		Interdisciplinary: CountInterdisciplinary(records),
		Diversity:         Diversity(records),
		TimeOfDay:         TimeOfDayDistribution(records, opts.Location),
		DayOfWeek:         DayOfWeekDistribution(records, opts.Location),
		Streaks:           Streaks(records, opts.MinStreakDays),
	}
}
