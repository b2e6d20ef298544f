// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() map[string]any {
	return map[string]any{
		"id":        "exp_test1",
		"timestamp": "2024-03-04T10:30:00Z",
		"learner": map[string]any{
			"id":        "alice",
			"name":      "Alice",
			"interests": []any{"robots"},
		},
		"context": map[string]any{
			"location": map[string]any{
				"name": "Lab A",
				"coordinates": map[string]any{
					"latitude":  37.7749,
					"longitude": -122.4194,
				},
				"type": "laboratory",
			},
			"connections": []any{"bob"},
			"timeOfDay":   "morning",
		},
		"experienceData": map[string]any{
			"type":        "workshop",
			"description": "Soldered a sensor board",
			"domains":     []any{"hardware", "software"},
			"duration":    90,
			"intensity":   "high",
		},
		"privacy": map[string]any{"level": "public"},
		"tags":    []any{"maker", "maker"},
	}
}

func TestDecode_Valid(t *testing.T) {
	records, err := Decode([]any{validRaw()})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "exp_test1", rec.ID)
	assert.Equal(t, CurrentVersion, rec.Version)
	assert.Equal(t, "alice", rec.Learner.ID)
	assert.Equal(t, "Lab A", rec.Context.Location.Name)
	require.NotNil(t, rec.Context.Location.Coordinates)
	assert.InDelta(t, 37.7749, rec.Context.Location.Coordinates.Latitude, 1e-9)
	assert.Equal(t, TimeMorning, rec.Context.TimeOfDay)
	assert.Equal(t, IntensityHigh, rec.ExperienceData.Intensity)
	require.NotNil(t, rec.ExperienceData.Duration)
	assert.Equal(t, 90, *rec.ExperienceData.Duration)
	assert.Equal(t, PrivacyPublic, rec.PrivacyLevel())
	assert.Equal(t, []string{"maker", "maker"}, rec.Tags)
}

func TestDecode_GeneratesMissingFields(t *testing.T) {
	raw := validRaw()
	delete(raw, "id")
	delete(raw, "timestamp")
	delete(raw, "version")

	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	records, err := NewDecoder(WithClock(func() time.Time { return fixed })).Decode([]any{raw})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.True(t, strings.HasPrefix(records[0].ID, IDPrefix))
	assert.Equal(t, "2024-05-06T07:08:09Z", records[0].Timestamp)
	assert.Equal(t, CurrentVersion, records[0].Version)
}

func TestDecode_AccumulatesErrors(t *testing.T) {
	missingLearner := validRaw()
	delete(missingLearner, "learner")

	emptyDescription := validRaw()
	emptyDescription["experienceData"].(map[string]any)["description"] = ""

	badLatitude := validRaw()
	badLatitude["context"].(map[string]any)["location"].(map[string]any)["coordinates"] = map[string]any{
		"latitude":  91.0,
		"longitude": 0.0,
	}

	records, err := Decode([]any{validRaw(), missingLearner, emptyDescription, "not an object", badLatitude})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
	assert.Len(t, records, 1)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	msgs := decodeErr.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "record[1]: learner is required", msgs[0])
	assert.Equal(t, "record[2]: experienceData.description is required", msgs[1])
	assert.Equal(t, "record[3]: expected an object", msgs[2])
	assert.Equal(t, "record[4]: context.location.coordinates.latitude must be between -90 and 90", msgs[3])
}

func TestDecode_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{
			name:    "empty learner id",
			mutate:  func(m map[string]any) { m["learner"].(map[string]any)["id"] = "" },
			message: "learner.id is required",
		},
		{
			name:    "missing location",
			mutate:  func(m map[string]any) { delete(m["context"].(map[string]any), "location") },
			message: "context.location is required",
		},
		{
			name:    "empty location name",
			mutate:  func(m map[string]any) { m["context"].(map[string]any)["location"].(map[string]any)["name"] = "" },
			message: "context.location.name is required",
		},
		{
			name:    "missing experience type",
			mutate:  func(m map[string]any) { delete(m["experienceData"].(map[string]any), "type") },
			message: "experienceData.type is required",
		},
		{
			name: "longitude out of range",
			mutate: func(m map[string]any) {
				m["context"].(map[string]any)["location"].(map[string]any)["coordinates"] = map[string]any{
					"latitude": 0.0, "longitude": -181.0,
				}
			},
			message: "context.location.coordinates.longitude must be between -180 and 180",
		},
		{
			name:    "bad timestamp",
			mutate:  func(m map[string]any) { m["timestamp"] = "yesterday" },
			message: "timestamp must be an ISO-8601 timestamp",
		},
		{
			name:    "wrong type",
			mutate:  func(m map[string]any) { m["learner"].(map[string]any)["id"] = 42 },
			message: "learner.id must be string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)
			_, err := Decode([]any{raw})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDecode_LegacyCoordinates(t *testing.T) {
	raw := validRaw()
	raw["context"].(map[string]any)["location"].(map[string]any)["coordinates"] = map[string]any{
		"lat": 51.5,
		"lon": -0.12,
	}

	records, err := Decode([]any{raw})
	require.NoError(t, err)
	coords := records[0].Context.Location.Coordinates
	require.NotNil(t, coords)
	assert.Equal(t, 51.5, coords.Latitude)
	assert.Equal(t, -0.12, coords.Longitude)
}

func TestDecode_LegacyExperienceKey(t *testing.T) {
	raw := validRaw()
	raw["experience"] = raw["experienceData"]
	delete(raw, "experienceData")
	delete(raw, "version")

	records, err := Decode([]any{raw})
	require.NoError(t, err)
	assert.Equal(t, "workshop", records[0].ExperienceData.Type)
	assert.Equal(t, CurrentVersion, records[0].Version)
}

func TestDecode_UnknownEnumsFallBack(t *testing.T) {
	raw := validRaw()
	raw["context"].(map[string]any)["timeOfDay"] = "brunch"
	raw["experienceData"].(map[string]any)["intensity"] = "extreme"
	raw["privacy"] = map[string]any{"level": "secret"}

	records, err := Decode([]any{raw})
	require.NoError(t, err)
	rec := records[0]
	assert.Empty(t, rec.Context.TimeOfDay)
	assert.Equal(t, IntensityMedium, rec.ExperienceData.Intensity)
	assert.Equal(t, PrivacyAnonymous, rec.PrivacyLevel())
}

func TestDecode_EnumsAreCaseInsensitive(t *testing.T) {
	raw := validRaw()
	raw["context"].(map[string]any)["timeOfDay"] = " Evening "
	raw["experienceData"].(map[string]any)["intensity"] = "LOW"

	records, err := Decode([]any{raw})
	require.NoError(t, err)
	assert.Equal(t, TimeEvening, records[0].Context.TimeOfDay)
	assert.Equal(t, IntensityLow, records[0].ExperienceData.Intensity)
}

func TestDecode_StrictRejectsUnknownEnums(t *testing.T) {
	raw := validRaw()
	raw["experienceData"].(map[string]any)["intensity"] = "extreme"

	_, err := NewDecoder(Strict()).Decode([]any{raw})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "experienceData.intensity must be one of [low medium high]")
}

func TestDecode_DoesNotMutateInput(t *testing.T) {
	raw := validRaw()
	raw["context"].(map[string]any)["location"].(map[string]any)["coordinates"] = map[string]any{"lat": 1.0, "lon": 2.0}

	_, err := Decode([]any{raw})
	require.NoError(t, err)

	coords := raw["context"].(map[string]any)["location"].(map[string]any)["coordinates"].(map[string]any)
	assert.Contains(t, coords, "lat")
	assert.NotContains(t, coords, "latitude")
}

func TestDecode_Idempotent(t *testing.T) {
	first, err := Decode([]any{validRaw()})
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := NewDecoder().DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeJSON_SingleObject(t *testing.T) {
	data := []byte(`{
		"learner": {"id": "carol"},
		"context": {"location": {"name": "Library"}},
		"experienceData": {"type": "reading", "description": "Read about graphs"}
	}`)

	records, err := NewDecoder().DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "carol", records[0].Learner.ID)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, err := NewDecoder().DecodeJSON([]byte(`[{`))
	assert.Error(t, err)
}

func TestDecode_KeepsProvidedVersion(t *testing.T) {
	raw := validRaw()
	raw["version"] = "2.0"

	rec, err := NewDecoder().DecodeOne(raw)
	require.NoError(t, err)
	assert.Equal(t, "2.0", rec.Version)
}

func TestDecode_LegacyRewriteStampsCurrentVersion(t *testing.T) {
	raw := validRaw()
	raw["version"] = LegacyVersion
	raw["context"].(map[string]any)["location"].(map[string]any)["coordinates"] = map[string]any{"lat": 1.0, "lon": 2.0}

	rec, err := NewDecoder().DecodeOne(raw)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, rec.Version)
}

func TestDecode_NonStringID(t *testing.T) {
	tests := []struct {
		name    string
		id      any
		want    string
		message string
	}{
		{name: "json number", id: 123.0, want: "123"},
		{name: "yaml int", id: 42, want: "42"},
		{name: "bool", id: true, message: "id must be string, got bool"},
		{name: "object", id: map[string]any{"n": 1}, message: "id must be string, got object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw["id"] = tt.id

			rec, err := NewDecoder().DecodeOne(raw)
			if tt.message != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ID)
		})
	}
}

func TestDecodeError_SourceMessages(t *testing.T) {
	err := &DecodeError{Failures: []RecordError{
		{Index: 2, Message: "learner is required"},
		{Source: "experiences/2024/01/bad.md", Message: "failed to parse journal"},
	}}
	assert.Equal(t, []string{
		"record[2]: learner is required",
		"experiences/2024/01/bad.md: failed to parse journal",
	}, err.Messages())
}
