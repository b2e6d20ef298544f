// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

import (
	"fmt"
	"time"
)

// CurrentVersion is the schema version stamped on every decoded record
const CurrentVersion = "1.0"

// LegacyVersion is assumed for raw input that carries no version tag
const LegacyVersion = "0.9"

// TimeOfDay tags when an experience happened
type TimeOfDay string

// TimeOfDay values
const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// Intensity tags how demanding an experience was
type Intensity string

// Intensity values
const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// PrivacyLevel controls whether a record may leave the local corpus
type PrivacyLevel string

// PrivacyLevel values
const (
	PrivacyPrivate   PrivacyLevel = "private"
	PrivacyAnonymous PrivacyLevel = "anonymous"
	PrivacyPublic    PrivacyLevel = "public"
)

// LearningExperience is a single captured learning record.
// A value that passed Validate is treated as immutable; transforms work on a Clone.
type LearningExperience struct {
	ID             string         `json:"id" validate:"required"`
	Timestamp      string         `json:"timestamp" validate:"required,iso8601"`
	Version        string         `json:"version" validate:"required"`
	Learner        Learner        `json:"learner"`
	Context        Context        `json:"context"`
	ExperienceData ExperienceData `json:"experienceData"`
	Privacy        *Privacy       `json:"privacy,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
}

// Learner identifies who learned
type Learner struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Location is where the experience happened
type Location struct {
	Name        string       `json:"name" validate:"required"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Type        string       `json:"type,omitempty"`
	Address     string       `json:"address,omitempty"`
}

// Context describes the circumstances of an experience
type Context struct {
	Location    Location  `json:"location"`
	Situation   string    `json:"situation,omitempty"`
	Connections []string  `json:"connections,omitempty"`
	TimeOfDay   TimeOfDay `json:"timeOfDay,omitempty" validate:"omitempty,oneof=morning afternoon evening night"`
}

// ExperienceData describes what was learned
type ExperienceData struct {
	Type        string    `json:"type" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Domains     []string  `json:"domains,omitempty"`
	Outcome     *Outcome  `json:"outcome,omitempty"`
	Duration    *int      `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Intensity   Intensity `json:"intensity,omitempty" validate:"omitempty,oneof=low medium high"`
}

// Outcome records what came out of an experience
type Outcome struct {
	Success         *bool    `json:"success,omitempty"`
	ConnectionsMade []string `json:"connectionsMade,omitempty"`
	NextQuestions   []string `json:"nextQuestions,omitempty"`
	Artifacts       []string `json:"artifacts,omitempty"`
}

// Privacy holds sharing preferences
type Privacy struct {
	Level         PrivacyLevel `json:"level" validate:"omitempty,oneof=private anonymous public"`
	ShareableWith []string     `json:"shareableWith,omitempty"`
}

// PrivacyLevel returns the effective privacy level, anonymous when unset
func (e *LearningExperience) PrivacyLevel() PrivacyLevel {
	if e.Privacy == nil || e.Privacy.Level == "" {
		return PrivacyAnonymous
	}
	return e.Privacy.Level
}

// Domains returns the record's domains deduplicated, in first-seen order
func (e *LearningExperience) Domains() []string {
	if len(e.ExperienceData.Domains) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(e.ExperienceData.Domains))
	domains := make([]string, 0, len(e.ExperienceData.Domains))
	for _, d := range e.ExperienceData.Domains {
		if seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	return domains
}

// IsInterdisciplinary reports whether the record spans more than one distinct domain
func (e *LearningExperience) IsInterdisciplinary() bool {
	return len(e.Domains()) > 1
}

// timestampLayouts are accepted in order when parsing a record timestamp
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// ParsedTime returns the record timestamp as a time.Time
func (e *LearningExperience) ParsedTime() (time.Time, error) {
	return ParseTimestamp(e.Timestamp, time.Local)
}

// Clone returns a deep copy of the record
func (e *LearningExperience) Clone() *LearningExperience {
	if e == nil {
		return nil
	}
	c := *e
	c.Tags = cloneStrings(e.Tags)
	c.Learner.Interests = cloneStrings(e.Learner.Interests)
	c.Context.Connections = cloneStrings(e.Context.Connections)
	if e.Context.Location.Coordinates != nil {
		coords := *e.Context.Location.Coordinates
		c.Context.Location.Coordinates = &coords
	}
	c.ExperienceData.Domains = cloneStrings(e.ExperienceData.Domains)
	if e.ExperienceData.Duration != nil {
		d := *e.ExperienceData.Duration
		c.ExperienceData.Duration = &d
	}
	if e.ExperienceData.Outcome != nil {
		o := *e.ExperienceData.Outcome
		if o.Success != nil {
			s := *o.Success
			o.Success = &s
		}
		o.ConnectionsMade = cloneStrings(o.ConnectionsMade)
		o.NextQuestions = cloneStrings(o.NextQuestions)
		o.Artifacts = cloneStrings(o.Artifacts)
		c.ExperienceData.Outcome = &o
	}
	if e.Privacy != nil {
		p := *e.Privacy
		p.ShareableWith = cloneStrings(p.ShareableWith)
		c.Privacy = &p
	}
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
