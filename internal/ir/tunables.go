package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Tunables holds the tunables section of a dump.
//
// Values are the integer tunables that make up the tunables section of the
// text map. Notes keeps string-valued informational entries such as
// "profile" and "minimum_required_version"; they are never emitted.
type Tunables struct {
	Values map[string]int64
	Notes  map[string]string
}

// Names returns the integer tunable names sorted lexicographically.
func (t Tunables) Names() []string {
	names := make([]string, 0, len(t.Values))
	for name := range t.Values {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// UnmarshalJSON splits the dumped object into integer values and notes.
func (t *Tunables) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.Values = make(map[string]int64, len(raw))
	t.Notes = make(map[string]string)
	for name, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if len(msg) > 0 && msg[0] == '"' {
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return fmt.Errorf("tunable %q: %w", name, err)
			}
			t.Notes[name] = s
			continue
		}
		var n int64
		if err := json.Unmarshal(msg, &n); err != nil {
			return fmt.Errorf("tunable %q: must be an integer or string", name)
		}
		t.Values[name] = n
	}
	return nil
}

// MarshalJSON writes values and notes back as a single object.
func (t Tunables) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Values)+len(t.Notes))
	for name, v := range t.Values {
		out[name] = v
	}
	for name, s := range t.Notes {
		out[name] = s
	}
	return json.Marshal(out)
}
