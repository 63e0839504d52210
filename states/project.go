package states

import (
	"fmt"
	"slices"

	statereg "github.com/goliatone/go-statereg"
)

// Project holds the state of the open project file.
type Project struct {
	Metadata           Metadata       `json:"metadata"`
	RelativeMediaPath  string         `json:"relativeMediaPath"`
	ActiveTimer        float32        `json:"activeTimer" minimum:"0"`
	LastPlayerPosition float32        `json:"lastPlayerPosition" minimum:"0"`
	ActiveScriptIdx    uint32         `json:"activeScriptIdx"`
	NudgeMetadata      bool           `json:"nudgeMetadata"`
	BinaryFunscript    statereg.Bytes `json:"binaryFunscriptData"`
}

const ProjectName = "ProjectState"

func (p *Project) SetDefaults() {
	p.Metadata = defaultMetadata()
	p.NudgeMetadata = true
}

// TempoOverlay configures the beat grid overlay.
type TempoOverlay struct {
	BPM               float32 `json:"bpm" minimum:"1"`
	BeatOffsetSeconds float32 `json:"beatOffsetSeconds"`
	MeasureIndex      uint32  `json:"measureIndex"`
}

const TempoOverlayName = "TempoOverlayState"

func (t *TempoOverlay) SetDefaults() {
	t.BPM = 100
}

// VideoPlayerWindow holds the pan, zoom and projection of the video player.
type VideoPlayerWindow struct {
	CurrentVrRotation  Vec2      `json:"currentVrRotation"`
	CurrentTranslation Vec2      `json:"currentTranslation"`
	VideoPos           Vec2      `json:"videoPos"`
	PrevVrRotation     Vec2      `json:"prevVrRotation"`
	PrevTranslation    Vec2      `json:"prevTranslation"`
	ActiveMode         VideoMode `json:"activeMode"`
	VrZoom             float32   `json:"vrZoom"`
	ZoomFactor         float32   `json:"zoomFactor"`
	LockedPosition     bool      `json:"lockedPosition"`
}

const VideoPlayerWindowName = "VideoPlayerWindowState"

func (v *VideoPlayerWindow) SetDefaults() {
	v.CurrentVrRotation = Vec2{X: 0.5, Y: -0.5}
	v.PrevVrRotation = v.CurrentVrRotation
	v.ActiveMode = VideoModeFull
	v.VrZoom = 0.2
	v.ZoomFactor = 1
}

// Waveform caches the audio waveform of the project media as 16-bit samples.
type Waveform struct {
	Filename         string         `json:"Filename"`
	BinSamples       statereg.Bytes `json:"BinSamples"`
	UncompressedSize uint64         `json:"UncompressedSize"`
}

const WaveformName = "WaveformState"

// SetSamples quantizes samples in [0,1] to little-endian uint16 values.
func (w *Waveform) SetSamples(samples []float32) {
	out := make(statereg.Bytes, 0, len(samples)*2)
	for _, sample := range samples {
		v := uint16(clamp01(sample) * 0xFFFF)
		out = append(out, byte(v), byte(v>>8))
	}
	w.BinSamples = out
	w.UncompressedSize = uint64(len(out))
}

// Samples decodes the stored samples back to [0,1].
func (w Waveform) Samples() ([]float32, error) {
	if uint64(len(w.BinSamples)) != w.UncompressedSize {
		return nil, fmt.Errorf("states: waveform holds %d bytes, expected %d", len(w.BinSamples), w.UncompressedSize)
	}
	if len(w.BinSamples)%2 != 0 {
		return nil, fmt.Errorf("states: waveform has an odd byte count %d", len(w.BinSamples))
	}
	out := make([]float32, 0, len(w.BinSamples)/2)
	for i := 0; i < len(w.BinSamples); i += 2 {
		v := uint16(w.BinSamples[i]) | uint16(w.BinSamples[i+1])<<8
		out = append(out, float32(v)/0xFFFF)
	}
	return out, nil
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Chapter is a named time range, in seconds.
type Chapter struct {
	StartTime float32 `json:"startTime" minimum:"0"`
	EndTime   float32 `json:"endTime" minimum:"0"`
	Name      string  `json:"name"`
	Color     Color   `json:"color"`
}

// Bookmark is a named point in time, in seconds.
type Bookmark struct {
	Time float32 `json:"time" minimum:"0"`
	Name string  `json:"name"`
}

// Chapters holds the chapters and bookmarks of the project, each sorted by
// start time.
type Chapters struct {
	Chapters  []Chapter  `json:"chapters"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

const ChaptersName = "ChapterState"

// Validate rejects inverted or overlapping chapters.
func (c *Chapters) Validate() error {
	for i, chapter := range c.Chapters {
		if chapter.EndTime < chapter.StartTime {
			return fmt.Errorf("states: chapter %q ends before it starts", chapter.Name)
		}
		if i > 0 && chapter.StartTime < c.Chapters[i-1].EndTime {
			return fmt.Errorf("states: chapter %q overlaps %q", chapter.Name, c.Chapters[i-1].Name)
		}
	}
	return nil
}

// Sort orders chapters and bookmarks by time.
func (c *Chapters) Sort() {
	slices.SortStableFunc(c.Chapters, func(a, b Chapter) int {
		return compareFloat(a.StartTime, b.StartTime)
	})
	slices.SortStableFunc(c.Bookmarks, func(a, b Bookmark) int {
		return compareFloat(a.Time, b.Time)
	})
}

func compareFloat(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

var (
	_ statereg.Defaulter = (*Project)(nil)
	_ statereg.Defaulter = (*TempoOverlay)(nil)
	_ statereg.Defaulter = (*VideoPlayerWindow)(nil)
)
