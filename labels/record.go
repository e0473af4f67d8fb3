// Package labels holds the label records produced by a labeling run and
// reads and writes the labels file.
package labels

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag is a binary label. It is stored as the JSON strings "true" and "false"
// so files stay compatible with earlier labeling runs.
type Flag bool

// MarshalJSON implements json.Marshaler
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatBool(bool(f)))
}

// UnmarshalJSON accepts "true"/"false" strings as well as native booleans
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("label must be a boolean or a \"true\"/\"false\" string, got %s", data)
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid label value %q", s)
	}
	*f = Flag(b)
	return nil
}

// Record is one video's path plus its assigned label
type Record struct {
	VideoPath string `json:"video_path"`
	SpaceBar  Flag   `json:"space_bar"`
	// PHash is the perceptual hash of the first frame, only recorded on request
	PHash string `json:"phash,omitempty"`
}

// Set is the ordered collection of records of a run, in discovery order
type Set []Record
