// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package privacy

import (
	"math"
	"strings"

	"github.com/tejzpr/learnmap/internal/experience"
)

// DefaultFuzzRadius is about one kilometre of latitude
const DefaultFuzzRadius = 0.01

// LocationOptions controls AnonymizeLocation
type LocationOptions struct {
	FuzzCoordinates bool
	FuzzRadius      float64
	RemoveAddress   bool
	GeneralizeType  bool
}

// DefaultLocationOptions fuzzes coordinates and drops the address
func DefaultLocationOptions() LocationOptions {
	return LocationOptions{
		FuzzCoordinates: true,
		FuzzRadius:      DefaultFuzzRadius,
		RemoveAddress:   true,
	}
}

var locationCategories = map[string]string{
	"cafe":        "food_and_drink",
	"coffee shop": "food_and_drink",
	"restaurant":  "food_and_drink",
	"library":     "library",
	"bookstore":   "library",
	"university":  "education",
	"college":     "education",
	"school":      "education",
	"classroom":   "education",
	"office":      "workplace",
	"coworking":   "workplace",
	"workplace":   "workplace",
	"park":        "outdoors",
	"garden":      "outdoors",
	"beach":       "outdoors",
	"trail":       "outdoors",
	"museum":      "culture",
	"gallery":     "culture",
	"home":        "residence",
	"apartment":   "residence",
	"lab":         "workshop",
	"laboratory":  "workshop",
	"makerspace":  "workshop",
}

// GeneralizeLocationType maps a known location type to a coarser category.
// Unknown types are returned unchanged.
func GeneralizeLocationType(locationType string) string {
	if category, ok := locationCategories[strings.ToLower(strings.TrimSpace(locationType))]; ok {
		return category
	}
	return locationType
}

// FuzzCoordinate rounds value to the nearest multiple of radius. Results
// beyond ±limit step one multiple back toward zero.
func FuzzCoordinate(value, radius, limit float64) float64 {
	if radius <= 0 {
		radius = DefaultFuzzRadius
	}
	steps := math.Round(value / radius)
	if math.Abs(steps*radius) > limit {
		steps -= math.Copysign(1, steps)
	}
	return steps * radius
}

// AnonymizeLocation coarsens the record's location
func AnonymizeLocation(rec *experience.LearningExperience, opts LocationOptions) *experience.LearningExperience {
	out := rec.Clone()
	loc := &out.Context.Location

	if opts.FuzzCoordinates && loc.Coordinates != nil {
		loc.Coordinates.Latitude = FuzzCoordinate(loc.Coordinates.Latitude, opts.FuzzRadius, 90)
		loc.Coordinates.Longitude = FuzzCoordinate(loc.Coordinates.Longitude, opts.FuzzRadius, 180)
	}
	if opts.RemoveAddress {
		loc.Address = ""
	}
	if opts.GeneralizeType && loc.Type != "" {
		loc.Type = GeneralizeLocationType(loc.Type)
	}
	return out
}
