package states

import statereg "github.com/goliatone/go-statereg"

// Handles holds the handle of every catalog state.
type Handles struct {
	Preferences       statereg.AppState[Preferences]
	ScriptingMode     statereg.AppState[ScriptingMode]
	WebsocketAPI      statereg.AppState[WebsocketAPI]
	SpecialFunctions  statereg.AppState[SpecialFunctions]
	BaseOverlay       statereg.AppState[BaseOverlay]
	Keybindings       statereg.AppState[Keybindings]
	Application       statereg.AppState[Application]
	FunscriptMetadata statereg.AppState[FunscriptMetadata]

	Project           statereg.ProjectState[Project]
	TempoOverlay      statereg.ProjectState[TempoOverlay]
	VideoPlayerWindow statereg.ProjectState[VideoPlayerWindow]
	Waveform          statereg.ProjectState[Waveform]
	Chapters          statereg.ProjectState[Chapters]
}

// RegisterAll registers the catalog on m. It is safe to call more than once;
// later calls return the same handles.
func RegisterAll(m *statereg.Manager) Handles {
	return Handles{
		Preferences:      statereg.RegisterApp[Preferences](m, PreferencesName),
		ScriptingMode:    statereg.RegisterApp[ScriptingMode](m, ScriptingModeName),
		WebsocketAPI:     statereg.RegisterApp[WebsocketAPI](m, WebsocketAPIName),
		SpecialFunctions: statereg.RegisterApp[SpecialFunctions](m, SpecialFunctionsName),
		BaseOverlay:      statereg.RegisterApp[BaseOverlay](m, BaseOverlayName),
		Keybindings: statereg.RegisterApp[Keybindings](m, KeybindingsName,
			statereg.WithPostHook[Keybindings](func(_ statereg.HookContext, k *Keybindings) error {
				k.Normalize()
				return nil
			}),
		),
		Application: statereg.RegisterApp[Application](m, ApplicationName,
			statereg.WithPostHook[Application](func(_ statereg.HookContext, a *Application) error {
				a.trimRecentFiles()
				return nil
			}),
		),
		FunscriptMetadata: statereg.RegisterApp[FunscriptMetadata](m, FunscriptMetadataName),

		Project:           statereg.RegisterProject[Project](m, ProjectName),
		TempoOverlay:      statereg.RegisterProject[TempoOverlay](m, TempoOverlayName),
		VideoPlayerWindow: statereg.RegisterProject[VideoPlayerWindow](m, VideoPlayerWindowName),
		Waveform:          statereg.RegisterProject[Waveform](m, WaveformName),
		Chapters: statereg.RegisterProject[Chapters](m, ChaptersName,
			statereg.WithPostHook[Chapters](func(_ statereg.HookContext, c *Chapters) error {
				c.Sort()
				return c.Validate()
			}),
		),
	}
}
