// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package storage

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseJournal reads a hand-written markdown journal entry: YAML frontmatter
// holding the record fields, followed by free text. The text becomes
// experienceData.description unless the frontmatter already sets one.
func parseJournal(content string) (map[string]any, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split frontmatter: %w", err)
	}

	record := map[string]any{}
	if frontmatter != "" {
		var parsed map[string]any
		if err := yaml.Unmarshal([]byte(frontmatter), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
		}
		if parsed != nil {
			record = normalizeYAML(parsed).(map[string]any)
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return record, nil
	}

	data, ok := record["experienceData"].(map[string]any)
	if !ok {
		data = map[string]any{}
		record["experienceData"] = data
	}
	if desc, _ := data["description"].(string); desc == "" {
		data["description"] = body
	}
	return record, nil
}

// splitFrontmatter splits markdown content into frontmatter and body
func splitFrontmatter(content string) (string, string, error) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "---") {
		return "", content, nil
	}

	lines := strings.Split(content, "\n")
	closingIndex := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closingIndex = i
			break
		}
	}
	if closingIndex == -1 {
		return "", content, fmt.Errorf("frontmatter not properly closed")
	}

	frontmatter := strings.Join(lines[1:closingIndex], "\n")
	body := strings.Join(lines[closingIndex+1:], "\n")
	return frontmatter, body, nil
}
