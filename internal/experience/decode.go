// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DecodeError collects the failures of a batch decode, one message per failing record
type DecodeError struct {
	Failures []RecordError
}

// RecordError is the failure of the record at Index. Source names the file
// for records that failed before decoding.
type RecordError struct {
	Index   int
	Source  string
	Message string
}

func (e *DecodeError) Error() string {
	return strings.Join(e.Messages(), "\n")
}

// Messages returns "record[i]: ..." strings in input order, followed by
// "<source>: ..." for unreadable sources
func (e *DecodeError) Messages() []string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Source != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", f.Source, f.Message))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("record[%d]: %s", f.Index, f.Message))
	}
	return msgs
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidRecord)
func (e *DecodeError) Unwrap() error {
	return ErrInvalidRecord
}

// Decoder turns loosely shaped input into validated records
type Decoder struct {
	log    zerolog.Logger
	strict bool
	now    func() time.Time
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithLogger sets the logger used to report coerced values and legacy rewrites
func WithLogger(log zerolog.Logger) DecoderOption {
	return func(d *Decoder) { d.log = log }
}

// Strict makes unknown enum values a decode error instead of a logged default
func Strict() DecoderOption {
	return func(d *Decoder) { d.strict = true }
}

// WithClock overrides the time source for generated timestamps
func WithClock(now func() time.Time) DecoderOption {
	return func(d *Decoder) { d.now = now }
}

// NewDecoder creates a decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes a batch with a default decoder
func Decode(raw []any) ([]*LearningExperience, error) {
	return NewDecoder().Decode(raw)
}

// Decode validates every element of raw. Failures are accumulated: the
// error is a *DecodeError iff at least one element failed, and the
// returned slice holds the records that did decode, in input order.
func (d *Decoder) Decode(raw []any) ([]*LearningExperience, error) {
	records := make([]*LearningExperience, 0, len(raw))
	var failures []RecordError

	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			failures = append(failures, RecordError{Index: i, Message: "expected an object"})
			continue
		}
		rec, err := d.decodeOne(i, m)
		if err != nil {
			failures = append(failures, RecordError{Index: i, Message: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	if len(failures) > 0 {
		return records, &DecodeError{Failures: failures}
	}
	return records, nil
}

// DecodeMaps is Decode for callers that already hold typed maps
func (d *Decoder) DecodeMaps(raw []map[string]any) ([]*LearningExperience, error) {
	items := make([]any, len(raw))
	for i, m := range raw {
		items[i] = m
	}
	return d.Decode(items)
}

// DecodeOne decodes a single raw record
func (d *Decoder) DecodeOne(raw map[string]any) (*LearningExperience, error) {
	return d.decodeOne(0, raw)
}

// DecodeJSON decodes a JSON object or array of objects
func (d *Decoder) DecodeJSON(data []byte) ([]*LearningExperience, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		data = append(append([]byte{'['}, data...), ']')
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	return d.Decode(raw)
}

func (d *Decoder) decodeOne(index int, raw map[string]any) (*LearningExperience, error) {
	m, applied := Upgrade(raw)
	if len(applied) > 0 {
		d.log.Debug().Int("record", index).Strs("rewrites", applied).Msg("upgraded legacy record")
	}

	if problems := requireObjects(m); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	if err := d.coerceEnums(index, m); err != nil {
		return nil, err
	}
	d.fillGenerated(m)

	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var rec LearningExperience
	if err := json.Unmarshal(payload, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Problems: []string{
				fmt.Sprintf("%s must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			}}
		}
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// requireObjects reports missing required sub-objects before field-level checks
func requireObjects(m map[string]any) []string {
	var problems []string
	if _, ok := m["learner"].(map[string]any); !ok {
		problems = append(problems, "learner is required")
	}
	ctx, ok := m["context"].(map[string]any)
	if !ok {
		problems = append(problems, "context.location is required")
	} else if _, ok := ctx["location"].(map[string]any); !ok {
		problems = append(problems, "context.location is required")
	}
	if _, ok := m["experienceData"].(map[string]any); !ok {
		problems = append(problems, "experienceData is required")
	}
	return problems
}

// fillGenerated sets id, timestamp and version when absent. Numeric ids are
// kept as their decimal text; other non-string ids fail the typed decode.
func (d *Decoder) fillGenerated(m map[string]any) {
	switch id := m["id"].(type) {
	case nil:
		m["id"] = NewID()
	case string:
		if id == "" {
			m["id"] = NewID()
		}
	case float64:
		m["id"] = strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		m["id"] = strconv.Itoa(id)
	}
	if ts, _ := m["timestamp"].(string); ts == "" {
		m["timestamp"] = d.now().UTC().Format(time.RFC3339)
	}
	if v, _ := m["version"].(string); v == "" {
		m["version"] = CurrentVersion
	}
}

type enumField struct {
	path     []string
	key      string
	allowed  []string
	fallback string
}

var enumFields = []enumField{
	{
		path:    []string{"context"},
		key:     "timeOfDay",
		allowed: []string{string(TimeMorning), string(TimeAfternoon), string(TimeEvening), string(TimeNight)},
		// An unknown time of day is dropped: the field is optional
		fallback: "",
	},
	{
		path:     []string{"experienceData"},
		key:      "intensity",
		allowed:  []string{string(IntensityLow), string(IntensityMedium), string(IntensityHigh)},
		fallback: string(IntensityMedium),
	},
	{
		path:     []string{"privacy"},
		key:      "level",
		allowed:  []string{string(PrivacyPrivate), string(PrivacyAnonymous), string(PrivacyPublic)},
		fallback: string(PrivacyAnonymous),
	},
}

// coerceEnums normalizes enum strings and replaces unknown values with their fallback
func (d *Decoder) coerceEnums(index int, m map[string]any) error {
	var problems []string

	for _, f := range enumFields {
		parent := nestedMap(m, f.path...)
		if parent == nil {
			continue
		}
		value, present := parent[f.key]
		if !present {
			continue
		}

		s, _ := value.(string)
		normalized := strings.ToLower(strings.TrimSpace(s))
		if contains(f.allowed, normalized) {
			parent[f.key] = normalized
			continue
		}

		fieldPath := strings.Join(append(append([]string{}, f.path...), f.key), ".")
		if d.strict {
			problems = append(problems, fmt.Sprintf("%s must be one of [%s]", fieldPath, strings.Join(f.allowed, " ")))
			continue
		}

		d.log.Warn().
			Int("record", index).
			Str("field", fieldPath).
			Interface("value", value).
			Str("fallback", f.fallback).
			Msg("unrecognized value replaced with default")

		if f.fallback == "" {
			delete(parent, f.key)
		} else {
			parent[f.key] = f.fallback
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
