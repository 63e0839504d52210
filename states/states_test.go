package states

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	statereg "github.com/goliatone/go-statereg"
)

func TestRegisterAllIsIdempotent(t *testing.T) {
	m := statereg.New()
	first := RegisterAll(m)
	first.Preferences.Get(m).FramerateLimit = 60

	second := RegisterAll(m)
	if first != second {
		t.Fatalf("expected identical handles on repeated registration")
	}
	if got := second.Preferences.Get(m).FramerateLimit; got != 60 {
		t.Fatalf("re-registration must not reset state, got %d", got)
	}

	wantApp := []string{
		PreferencesName, ScriptingModeName, WebsocketAPIName, SpecialFunctionsName,
		BaseOverlayName, KeybindingsName, ApplicationName, FunscriptMetadataName,
	}
	if got := m.Names(statereg.GroupApp); !reflect.DeepEqual(got, wantApp) {
		t.Fatalf("unexpected app states %v", got)
	}
	wantProject := []string{ProjectName, TempoOverlayName, VideoPlayerWindowName, WaveformName, ChaptersName}
	if got := m.Names(statereg.GroupProject); !reflect.DeepEqual(got, wantProject) {
		t.Fatalf("unexpected project states %v", got)
	}
}

func TestCatalogDefaults(t *testing.T) {
	m := statereg.New()
	h := RegisterAll(m)

	prefs := h.Preferences.Get(m)
	if prefs.DefaultFontSize != 18 || prefs.FastStepAmount != 6 || prefs.FramerateLimit != 150 || !prefs.ShowMetaOnNew {
		t.Fatalf("unexpected preferences %+v", prefs)
	}
	if h.WebsocketAPI.Get(m).Port != "8080" {
		t.Fatalf("unexpected websocket port")
	}
	overlay := h.BaseOverlay.Get(m)
	if overlay.MaxSpeedPerSecond != 400 || overlay.MaxSpeedColor != (Color{R: 0, G: 0, B: 1, A: 1}) {
		t.Fatalf("unexpected overlay %+v", overlay)
	}
	app := h.Application.Get(m)
	if app.HeatmapSettings.DefaultWidth != 2000 || !app.ShowVideo || app.ShowDebugLog {
		t.Fatalf("unexpected application %+v", app)
	}
	if h.FunscriptMetadata.Get(m).DefaultMetadata.Type != "basic" {
		t.Fatalf("unexpected metadata defaults")
	}
	if project := h.Project.Get(m); !project.NudgeMetadata || project.Metadata.Type != "basic" {
		t.Fatalf("unexpected project %+v", project)
	}
	if h.TempoOverlay.Get(m).BPM != 100 {
		t.Fatalf("unexpected tempo overlay")
	}
	player := h.VideoPlayerWindow.Get(m)
	if player.CurrentVrRotation != (Vec2{X: 0.5, Y: -0.5}) || player.ZoomFactor != 1 || player.ActiveMode != VideoModeFull {
		t.Fatalf("unexpected player %+v", player)
	}
}

func TestProjectLegacyPayload(t *testing.T) {
	m := statereg.New()
	h := RegisterAll(m)

	doc := `{"ProjectState":{"relativeMediaPath":"clip.mp4","binaryFunscriptData":{"bytes":[1,2,3],"subtype":null}},` +
		`"WaveformState":{"Filename":"clip.wav","BinSamples":{"bytes":[255,255]},"UncompressedSize":2}}`
	report, err := m.DeserializeGroupReport(statereg.GroupProject, []byte(doc))
	if err != nil || !report.OK() {
		t.Fatalf("deserialize: %v %+v", err, report)
	}

	project := h.Project.Get(m)
	if string(project.BinaryFunscript) != "\x01\x02\x03" || project.RelativeMediaPath != "clip.mp4" {
		t.Fatalf("unexpected project %+v", project)
	}
	samples, err := h.Waveform.Get(m).Samples()
	if err != nil || len(samples) != 1 || samples[0] != 1 {
		t.Fatalf("unexpected samples %v, %v", samples, err)
	}

	out := string(m.SerializeGroup(statereg.GroupProject))
	if !strings.Contains(out, `"binaryFunscriptData":[1,2,3]`) || !strings.Contains(out, `"BinSamples":[255,255]`) {
		t.Fatalf("expected plain array form, got %s", out)
	}
}

func TestEnumsAcceptNamesAndOrdinals(t *testing.T) {
	m := statereg.New()
	h := RegisterAll(m)

	if !m.DeserializeGroup(statereg.GroupApp, []byte(`{"SpecialFunctionState":{"selectedFunction":1}}`)) {
		t.Fatalf("load failed")
	}
	if got := h.SpecialFunctions.Get(m).SelectedFunction; got != RamerDouglasPeucker {
		t.Fatalf("expected ordinal form to decode, got %v", got)
	}
	out := string(m.SerializeGroup(statereg.GroupApp))
	if !strings.Contains(out, `"selectedFunction":"RamerDouglasPeucker"`) {
		t.Fatalf("expected enum name in %s", out)
	}

	report, err := m.DeserializeGroupReport(statereg.GroupProject, []byte(`{"VideoPlayerWindowState":{"activeMode":"VrMode"}}`))
	if err != nil || !report.OK() {
		t.Fatalf("deserialize: %v %+v", err, report)
	}
	if h.VideoPlayerWindow.Get(m).ActiveMode != VideoModeVR {
		t.Fatalf("expected VrMode")
	}

	for _, bad := range []string{`"Sideways"`, `9`, `-1`, `true`} {
		var mode VideoMode
		if err := json.Unmarshal([]byte(bad), &mode); err == nil {
			t.Fatalf("expected %s to be rejected", bad)
		}
	}
	if _, err := json.Marshal(VideoMode(42)); err == nil {
		t.Fatalf("expected out of range mode to fail encoding")
	}
	if VideoMode(42).String() != "VideoMode(42)" || VideoModeLeftPane.String() != "LeftPane" {
		t.Fatalf("unexpected String output")
	}
}

func TestKeybindingsNormalizedOnLoad(t *testing.T) {
	m := statereg.New()
	h := RegisterAll(m)

	doc := `{"KeybindingState":{"Triggers":[` +
		`{"Key":5,"Mod":0,"MappedActionId":"b"},` +
		`{"Key":1,"Mod":0,"MappedActionId":"a"},` +
		`{"Key":5,"Mod":0,"MappedActionId":"dup"}]}}`
	if !m.DeserializeGroup(statereg.GroupApp, []byte(doc)) {
		t.Fatalf("load failed")
	}
	triggers := h.Keybindings.Get(m).Triggers
	if len(triggers) != 2 || triggers[0].MappedActionID != "a" || triggers[1].MappedActionID != "b" {
		t.Fatalf("unexpected triggers %+v", triggers)
	}

	bindings := h.Keybindings.Get(m)
	bindings.Bind(ActionTrigger{Key: 5, MappedActionID: "replaced"})
	if len(bindings.Triggers) != 2 || bindings.Triggers[1].MappedActionID != "replaced" {
		t.Fatalf("bind must replace the chord, got %+v", bindings.Triggers)
	}

	var trigger ActionTrigger
	trigger.SetFlag(TriggerMouseWheelDirection, true)
	if trigger.Mod != TriggerMouseWheelDirection {
		t.Fatalf("expected flag set, got %d", trigger.Mod)
	}
	trigger.SetFlag(TriggerMouseWheelDirection, false)
	if trigger.Mod != 0 {
		t.Fatalf("expected flag cleared, got %d", trigger.Mod)
	}
}

func TestApplicationRecentFiles(t *testing.T) {
	var app Application
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		if err := app.AddRecentFile(RecentFile{Name: name, ProjectPath: "/p/" + name}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if len(app.RecentFiles) != MaxRecentFiles || app.RecentFiles[0].Name != "b" {
		t.Fatalf("unexpected recent files %+v", app.RecentFiles)
	}
	if err := app.AddRecentFile(RecentFile{Name: "c again", ProjectPath: "/p/c"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	last := app.RecentFiles[len(app.RecentFiles)-1]
	if len(app.RecentFiles) != MaxRecentFiles || last.Name != "c again" {
		t.Fatalf("expected the project moved to the end, got %+v", app.RecentFiles)
	}
	if err := app.AddRecentFile(RecentFile{}); err == nil {
		t.Fatalf("expected empty name to be rejected")
	}
}

func TestChaptersRejectOverlaps(t *testing.T) {
	m := statereg.New()
	h := RegisterAll(m)
	h.Chapters.Get(m).Chapters = []Chapter{{Name: "kept", StartTime: 0, EndTime: 5}}

	report, err := m.DeserializeGroupReport(statereg.GroupProject, []byte(
		`{"ChapterState":{"chapters":[{"name":"b","startTime":3,"endTime":8},{"name":"a","startTime":0,"endTime":4}]}}`))
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if _, failed := report.Failed[ChaptersName]; !failed {
		t.Fatalf("expected overlapping chapters to be rejected, got %+v", report)
	}
	if got := h.Chapters.Get(m).Chapters; len(got) != 1 || got[0].Name != "kept" {
		t.Fatalf("rejected fragment must leave chapters untouched, got %+v", got)
	}

	if !m.DeserializeGroup(statereg.GroupProject, []byte(
		`{"ChapterState":{"chapters":[{"name":"b","startTime":5,"endTime":8},{"name":"a","startTime":0,"endTime":5}],"bookmarks":[{"time":9,"name":"y"},{"time":1,"name":"x"}]}}`)) {
		t.Fatalf("load failed")
	}
	chapters := h.Chapters.Get(m)
	if chapters.Chapters[0].Name != "a" || chapters.Bookmarks[0].Name != "x" {
		t.Fatalf("expected sorted chapters and bookmarks, got %+v", chapters)
	}
}

func TestWaveformSamples(t *testing.T) {
	var w Waveform
	w.SetSamples([]float32{0, 1, 2, -1})
	got, err := w.Samples()
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	want := []float32{0, 1, 1, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	w.UncompressedSize = 99
	if _, err := w.Samples(); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestCatalogSchema(t *testing.T) {
	m := statereg.New()
	RegisterAll(m)

	schema, err := m.Schema(statereg.GroupApp)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	special := schema["properties"].(map[string]any)[SpecialFunctionsName].(map[string]any)
	selected := special["properties"].(map[string]any)["selectedFunction"].(map[string]any)
	if selected["type"] != "string" || selected["default"] != "RangeExtender" {
		t.Fatalf("enums must be described by name, got %v", selected)
	}
	if _, err := m.SchemaDocument(); err != nil {
		t.Fatalf("schema document: %v", err)
	}
}
