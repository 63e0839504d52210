package statereg

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Bytes is a binary payload persisted as a plain array of numbers. Older
// documents wrapped the array in an object, {"bytes":[...],"subtype":null};
// both shapes are read, only the array is written.
type Bytes []byte

// MarshalJSON writes b as [n, n, ...]. A nil slice is written as [].
func (b Bytes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(b)*4 + 2)
	buf.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%d", v)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a number array or the legacy object wrapper.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*b = nil
		return nil
	}

	var values []int
	if err := json.Unmarshal(trimmed, &values); err != nil {
		var legacy map[string]json.RawMessage
		if json.Unmarshal(trimmed, &legacy) != nil {
			return fmt.Errorf("statereg: bytes must be an array or an object with a bytes array: %w", err)
		}
		nested, ok := legacy["bytes"]
		if !ok {
			return fmt.Errorf("statereg: legacy bytes object has no bytes field")
		}
		if err := json.Unmarshal(nested, &values); err != nil {
			return fmt.Errorf("statereg: legacy bytes field: %w", err)
		}
	}

	if len(values) == 0 {
		*b = nil
		return nil
	}
	out := make(Bytes, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("statereg: byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// JSONSchema describes the persisted shape of Bytes.
func (Bytes) JSONSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 255,
		},
	}
}
