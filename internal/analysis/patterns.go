// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package analysis

import (
	"sort"
	"time"

	"github.com/tejzpr/learnmap/internal/experience"
)

// DefaultMinStreakDays is used when Streaks is called with minDays <= 0
const DefaultMinStreakDays = 3

// Bucket is the activity observed in one time slot
type Bucket struct {
	Count   int      `json:"count"`
	Domains []string `json:"domains"`
}

// Streak is a run of records whose consecutive timestamps are at most one whole day apart
type Streak struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
	Count int    `json:"count"`
}

// Weekdays lists day names in output order
var Weekdays = []string{
	time.Sunday.String(),
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
}

// TimesOfDay lists the time-of-day buckets in output order
var TimesOfDay = []experience.TimeOfDay{
	experience.TimeMorning,
	experience.TimeAfternoon,
	experience.TimeEvening,
	experience.TimeNight,
}

// HourBucket maps an hour of day to its bucket: [6,12) morning,
// [12,18) afternoon, [18,22) evening, otherwise night.
func HourBucket(hour int) experience.TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return experience.TimeMorning
	case hour >= 12 && hour < 18:
		return experience.TimeAfternoon
	case hour >= 18 && hour < 22:
		return experience.TimeEvening
	default:
		return experience.TimeNight
	}
}

// TimeOfDayDistribution buckets records by the hour of their timestamp read in loc
// (time.Local when nil). Records with unparseable timestamps are skipped.
func TimeOfDayDistribution(records []*experience.LearningExperience, loc *time.Location) map[experience.TimeOfDay]Bucket {
	acc := make(map[experience.TimeOfDay]*bucketAcc, len(TimesOfDay))
	for _, tod := range TimesOfDay {
		acc[tod] = newBucketAcc()
	}

	for _, rec := range records {
		t, ok := localTime(rec, loc)
		if !ok {
			continue
		}
		acc[HourBucket(t.Hour())].add(rec)
	}

	out := make(map[experience.TimeOfDay]Bucket, len(acc))
	for k, a := range acc {
		out[k] = a.bucket()
	}
	return out
}

// DayOfWeekDistribution buckets records by weekday name. All seven days are present.
func DayOfWeekDistribution(records []*experience.LearningExperience, loc *time.Location) map[string]Bucket {
	acc := make(map[string]*bucketAcc, len(Weekdays))
	for _, day := range Weekdays {
		acc[day] = newBucketAcc()
	}

	for _, rec := range records {
		t, ok := localTime(rec, loc)
		if !ok {
			continue
		}
		acc[t.Weekday().String()].add(rec)
	}

	out := make(map[string]Bucket, len(acc))
	for k, a := range acc {
		out[k] = a.bucket()
	}
	return out
}

// Streaks finds maximal runs of records whose consecutive timestamps differ by
// at most one whole day, keeping runs of at least minDays records.
func Streaks(records []*experience.LearningExperience, minDays int) []Streak {
	if minDays <= 0 {
		minDays = DefaultMinStreakDays
	}

	type stamped struct {
		raw string
		at  time.Time
	}
	var timeline []stamped
	for _, rec := range records {
		t, err := experience.ParseTimestamp(rec.Timestamp, time.Local)
		if err != nil {
			continue
		}
		timeline = append(timeline, stamped{raw: rec.Timestamp, at: t})
	}
	if len(timeline) == 0 {
		return []Streak{}
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].at.Before(timeline[j].at)
	})

	streaks := []Streak{}
	runStart := 0
	finish := func(end int) {
		n := end - runStart + 1
		if n >= minDays {
			streaks = append(streaks, Streak{
				Start: timeline[runStart].raw,
				End:   timeline[end].raw,
				Days:  n,
				Count: n,
			})
		}
	}

	for i := 1; i < len(timeline); i++ {
		if wholeDays(timeline[i].at.Sub(timeline[i-1].at)) > 1 {
			finish(i - 1)
			runStart = i
		}
	}
	finish(len(timeline) - 1)

	return streaks
}

// wholeDays truncates a duration to complete 24h periods
func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}

func localTime(rec *experience.LearningExperience, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	t, err := experience.ParseTimestamp(rec.Timestamp, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}

type bucketAcc struct {
	count   int
	domains map[string]bool
}

func newBucketAcc() *bucketAcc {
	return &bucketAcc{domains: make(map[string]bool)}
}

func (b *bucketAcc) add(rec *experience.LearningExperience) {
	b.count++
	for _, d := range rec.Domains() {
		b.domains[d] = true
	}
}

func (b *bucketAcc) bucket() Bucket {
	return Bucket{Count: b.count, Domains: sortedKeys(b.domains)}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
