package states

// Vec2 is a 2D vector persisted as {"x":..,"y":..}.
type Vec2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Color is an RGBA color with channels in [0,1], persisted as
// {"x":r,"y":g,"z":b,"w":a}.
type Color struct {
	R float32 `json:"x" minimum:"0" maximum:"1"`
	G float32 `json:"y" minimum:"0" maximum:"1"`
	B float32 `json:"z" minimum:"0" maximum:"1"`
	A float32 `json:"w" minimum:"0" maximum:"1"`
}

// RGBA builds a Color from 8-bit channels.
func RGBA(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}
}

// Metadata describes a funscript.
type Metadata struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Creator     string   `json:"creator"`
	ScriptURL   string   `json:"script_url"`
	VideoURL    string   `json:"video_url"`
	Tags        []string `json:"tags"`
	Performers  []string `json:"performers"`
	Description string   `json:"description"`
	License     string   `json:"license"`
	Notes       string   `json:"notes"`
	Duration    int64    `json:"duration" minimum:"0"`
}

func defaultMetadata() Metadata {
	return Metadata{Type: "basic"}
}
