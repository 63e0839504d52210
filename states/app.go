package states

import (
	"fmt"
	"slices"

	statereg "github.com/goliatone/go-statereg"
)

// Theme values stored in Preferences.CurrentTheme.
const (
	ThemeDark  int32 = 0
	ThemeLight int32 = 1
)

// Preferences holds user preferences.
type Preferences struct {
	LanguageCsv     string `json:"languageCsv"`
	FontOverride    string `json:"fontOverride"`
	DefaultFontSize int32  `json:"defaultFontSize" minimum:"1"`
	CurrentTheme    int32  `json:"currentTheme" enum:"0,1"`
	FastStepAmount  int32  `json:"fastStepAmount" minimum:"1"`
	VSync           int32  `json:"vsync"`
	FramerateLimit  int32  `json:"framerateLimit" minimum:"1"`
	ForceHwDecoding bool   `json:"forceHwDecoding"`
	ShowMetaOnNew   bool   `json:"showMetaOnNew"`
}

const PreferencesName = "Preferences"

func (p *Preferences) SetDefaults() {
	p.DefaultFontSize = 18
	p.CurrentTheme = ThemeDark
	p.FastStepAmount = 6
	p.FramerateLimit = 150
	p.ShowMetaOnNew = true
}

// ScriptingMode holds settings of the scripting modes.
type ScriptingMode struct {
	ActionInsertDelayMs int32 `json:"actionInsertDelayMs"`
}

const ScriptingModeName = "ScriptingMode"

// WebsocketAPI holds the websocket server settings.
type WebsocketAPI struct {
	Port         string `json:"port"`
	ServerActive bool   `json:"serverActive"`
}

const WebsocketAPIName = "WebsocketApi"

func (w *WebsocketAPI) SetDefaults() {
	w.Port = "8080"
}

// SpecialFunctions remembers the selected special function.
type SpecialFunctions struct {
	SelectedFunction SpecialFunction `json:"selectedFunction"`
}

const SpecialFunctionsName = "SpecialFunctionState"

// BaseOverlay configures the script timeline overlay.
type BaseOverlay struct {
	MaxSpeedColor         Color   `json:"MaxSpeedColor"`
	MaxSpeedPerSecond     float32 `json:"MaxSpeedPerSecond" minimum:"0"`
	ShowMaxSpeedHighlight bool    `json:"ShowMaxSpeedHighlight"`
	SyncLineEnable        bool    `json:"SyncLineEnable"`
	SplineMode            bool    `json:"SplineMode"`
}

const BaseOverlayName = "BaseOverlayState"

func (o *BaseOverlay) SetDefaults() {
	o.MaxSpeedColor = RGBA(0, 0, 255, 255)
	o.MaxSpeedPerSecond = 400
}

// ActionTrigger binds a key chord to an action. The lower three bytes of Mod
// carry modifier keys; flag bits above them refine the trigger.
type ActionTrigger struct {
	Key            int32  `json:"Key"`
	Mod            int32  `json:"Mod"`
	ShouldRepeat   bool   `json:"ShouldRepeat"`
	MappedActionID string `json:"MappedActionId"`
}

// TriggerMouseWheelDirection marks a trigger bound to the wheel direction.
const TriggerMouseWheelDirection int32 = 0x1

// Hash identifies the chord; two triggers with equal hashes collide.
func (t ActionTrigger) Hash() uint64 {
	return uint64(int64(t.Mod)<<4) | uint64(uint32(t.Key))
}

// SetFlag sets or clears flag on Mod.
func (t *ActionTrigger) SetFlag(flag int32, value bool) {
	t.Mod &^= flag
	if value {
		t.Mod |= flag
	}
}

// Keybindings holds all action triggers as a set ordered by Hash.
type Keybindings struct {
	Triggers []ActionTrigger `json:"Triggers"`
}

const KeybindingsName = "KeybindingState"

// Normalize sorts triggers by Hash and keeps the first trigger of each chord.
func (k *Keybindings) Normalize() {
	slices.SortStableFunc(k.Triggers, func(a, b ActionTrigger) int {
		switch ha, hb := a.Hash(), b.Hash(); {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		}
		return 0
	})
	k.Triggers = slices.CompactFunc(k.Triggers, func(a, b ActionTrigger) bool {
		return a.Hash() == b.Hash()
	})
}

// Bind adds trigger, replacing an existing trigger for the same chord.
func (k *Keybindings) Bind(trigger ActionTrigger) {
	k.Triggers = slices.DeleteFunc(k.Triggers, func(existing ActionTrigger) bool {
		return existing.Hash() == trigger.Hash()
	})
	k.Triggers = append(k.Triggers, trigger)
	k.Normalize()
}

// RecentFile is an entry of the recent files menu.
type RecentFile struct {
	Name        string `json:"name"`
	ProjectPath string `json:"projectPath"`
}

// HeatmapSettings configures heatmap export.
type HeatmapSettings struct {
	DefaultWidth  int32  `json:"defaultWidth" minimum:"1"`
	DefaultHeight int32  `json:"defaultHeight" minimum:"1"`
	DefaultPath   string `json:"defaultPath"`
}

// MaxRecentFiles bounds Application.RecentFiles.
const MaxRecentFiles = 5

// Application holds window toggles and session history of the editor.
type Application struct {
	RecentFiles              []RecentFile    `json:"recentFiles"`
	LastPath                 string          `json:"lastPath"`
	HeatmapSettings          HeatmapSettings `json:"heatmapSettings"`
	ShowDebugLog             bool            `json:"showDebugLog"`
	ShowVideo                bool            `json:"showVideo"`
	ShowActionEditor         bool            `json:"showActionEditor"`
	ShowStatistics           bool            `json:"showStatistics"`
	AlwaysShowBookmarkLabels bool            `json:"alwaysShowBookmarkLabels"`
	ShowHistory              bool            `json:"showHistory"`
	ShowSimulator            bool            `json:"showSimulator"`
	ShowSpecialFunctions     bool            `json:"showSpecialFunctions"`
	ShowWsAPI                bool            `json:"showWsApi"`
	ShowChapterManager       bool            `json:"showChapterManager"`
}

const ApplicationName = "OpenFunscripter"

func (a *Application) SetDefaults() {
	a.HeatmapSettings = HeatmapSettings{DefaultWidth: 2000, DefaultHeight: 50, DefaultPath: "./"}
	a.ShowVideo = true
	a.ShowStatistics = true
	a.ShowHistory = true
	a.ShowSimulator = true
}

// AddRecentFile moves file to the end of the list, dropping an older entry
// for the same project and the oldest entries beyond MaxRecentFiles.
func (a *Application) AddRecentFile(file RecentFile) error {
	if file.Name == "" {
		return fmt.Errorf("states: recent file name must not be empty")
	}
	a.RecentFiles = slices.DeleteFunc(a.RecentFiles, func(existing RecentFile) bool {
		return existing.ProjectPath == file.ProjectPath
	})
	a.RecentFiles = append(a.RecentFiles, file)
	a.trimRecentFiles()
	return nil
}

func (a *Application) trimRecentFiles() {
	if extra := len(a.RecentFiles) - MaxRecentFiles; extra > 0 {
		a.RecentFiles = slices.Delete(a.RecentFiles, 0, extra)
	}
}

// FunscriptMetadata holds the metadata new scripts start from.
type FunscriptMetadata struct {
	DefaultMetadata Metadata `json:"defaultMetadata"`
}

const FunscriptMetadataName = "FunscriptMetadata"

func (f *FunscriptMetadata) SetDefaults() {
	f.DefaultMetadata = defaultMetadata()
}

var (
	_ statereg.Defaulter = (*Preferences)(nil)
	_ statereg.Defaulter = (*WebsocketAPI)(nil)
	_ statereg.Defaulter = (*BaseOverlay)(nil)
	_ statereg.Defaulter = (*Application)(nil)
	_ statereg.Defaulter = (*FunscriptMetadata)(nil)
)
