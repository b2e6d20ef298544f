// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

// Upgrade rewrites a raw record from an older schema revision into the
// current field layout. The input map is not modified. The returned list
// names every rewrite that was applied.
func Upgrade(raw map[string]any) (map[string]any, []string) {
	out := deepCopyMap(raw)
	var applied []string

	version, _ := out["version"].(string)
	if version == "" {
		version = LegacyVersion
	}

	// 0.9 records carried the experience block under "experience"
	if _, ok := out["experienceData"]; !ok {
		if legacy, ok := out["experience"]; ok {
			out["experienceData"] = legacy
			delete(out, "experience")
			applied = append(applied, "experience -> experienceData")
		}
	}

	// Coordinates were once written as {lat, lon}
	if coords := nestedMap(out, "context", "location", "coordinates"); coords != nil {
		if moveKey(coords, "lat", "latitude") {
			applied = append(applied, "coordinates.lat -> coordinates.latitude")
		}
		if moveKey(coords, "lon", "longitude") {
			applied = append(applied, "coordinates.lon -> coordinates.longitude")
		}
		if moveKey(coords, "lng", "longitude") {
			applied = append(applied, "coordinates.lng -> coordinates.longitude")
		}
	}

	if version != CurrentVersion && len(applied) > 0 {
		out["version"] = CurrentVersion
		applied = append(applied, "version "+version+" -> "+CurrentVersion)
	}

	return out, applied
}

// moveKey renames from to to unless to is already present
func moveKey(m map[string]any, from, to string) bool {
	v, ok := m[from]
	if !ok {
		return false
	}
	if _, exists := m[to]; exists {
		delete(m, from)
		return false
	}
	m[to] = v
	delete(m, from)
	return true
}

// nestedMap walks keys and returns the map found at the end of the path
func nestedMap(m map[string]any, keys ...string) map[string]any {
	current := m
	for _, k := range keys {
		next, ok := current[k].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
