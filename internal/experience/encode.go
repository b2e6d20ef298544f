// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package experience

import (
	"encoding/json"
	"fmt"
)

// ToMap renders the record in its wire shape as an untyped map, the form
// storage backends persist and hand back to the Decoder
func (e *LearningExperience) ToMap() (map[string]any, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("failed to convert record: %w", err)
	}
	return m, nil
}
