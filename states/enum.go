package states

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Enumerations are persisted by name. Older documents stored the ordinal, so
// both forms are read.

func enumText(kind string, names []string, value int32) ([]byte, error) {
	if value < 0 || int(value) >= len(names) {
		return nil, fmt.Errorf("states: %s %d out of range", kind, value)
	}
	return []byte(names[value]), nil
}

func parseEnum(kind string, names []string, data []byte) (int32, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return 0, fmt.Errorf("states: %s: %w", kind, err)
		}
		for i, candidate := range names {
			if candidate == name {
				return int32(i), nil
			}
		}
		return 0, fmt.Errorf("states: unknown %s %q", kind, name)
	}
	ordinal, err := strconv.ParseInt(string(trimmed), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("states: %s must be a name or an ordinal: %w", kind, err)
	}
	if ordinal < 0 || int(ordinal) >= len(names) {
		return 0, fmt.Errorf("states: %s %d out of range", kind, ordinal)
	}
	return int32(ordinal), nil
}

func enumSchema(names []string) map[string]any {
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = name
	}
	return map[string]any{"type": "string", "enum": values}
}

// SpecialFunction selects the active special function. Ordinals are
// persisted by older documents and must not be reordered.
type SpecialFunction int32

const (
	RangeExtender SpecialFunction = iota
	RamerDouglasPeucker
)

var specialFunctionNames = []string{"RangeExtender", "RamerDouglasPeucker"}

func (f SpecialFunction) String() string {
	if text, err := f.MarshalText(); err == nil {
		return string(text)
	}
	return "SpecialFunction(" + strconv.Itoa(int(f)) + ")"
}

func (f SpecialFunction) MarshalText() ([]byte, error) {
	return enumText("special function", specialFunctionNames, int32(f))
}

func (f *SpecialFunction) UnmarshalJSON(data []byte) error {
	value, err := parseEnum("special function", specialFunctionNames, data)
	if err != nil {
		return err
	}
	*f = SpecialFunction(value)
	return nil
}

func (SpecialFunction) JSONSchema() map[string]any {
	return enumSchema(specialFunctionNames)
}

// VideoMode selects how the video is projected in the player window.
type VideoMode int32

const (
	VideoModeFull VideoMode = iota
	VideoModeLeftPane
	VideoModeRightPane
	VideoModeTopPane
	VideoModeBottomPane
	VideoModeVR
)

var videoModeNames = []string{"Full", "LeftPane", "RightPane", "TopPane", "BottomPane", "VrMode"}

func (v VideoMode) String() string {
	if text, err := v.MarshalText(); err == nil {
		return string(text)
	}
	return "VideoMode(" + strconv.Itoa(int(v)) + ")"
}

func (v VideoMode) MarshalText() ([]byte, error) {
	return enumText("video mode", videoModeNames, int32(v))
}

func (v *VideoMode) UnmarshalJSON(data []byte) error {
	value, err := parseEnum("video mode", videoModeNames, data)
	if err != nil {
		return err
	}
	*v = VideoMode(value)
	return nil
}

func (VideoMode) JSONSchema() map[string]any {
	return enumSchema(videoModeNames)
}
