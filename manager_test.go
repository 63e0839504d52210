package statereg

import (
	"errors"
	"math"
	"testing"

	"github.com/goliatone/go-statereg/pkg/activity"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

func TestRegisterIsIdempotent(t *testing.T) {
	m := New()

	first := Register[preferences](m, GroupApp, "Preferences")
	Get[preferences](m, GroupApp, first).FramerateLimit = 200

	second := Register[preferences](m, GroupApp, "Preferences")
	if first != second {
		t.Fatalf("expected identical handles, got %v and %v", first, second)
	}
	if got := Get[preferences](m, GroupApp, second).FramerateLimit; got != 200 {
		t.Fatalf("re-registration must not reset the value, got %d", got)
	}
	if m.Len(GroupApp) != 1 {
		t.Fatalf("expected a single slot, got %d", m.Len(GroupApp))
	}
}

func TestRegisterAssignsHandlesInCallOrder(t *testing.T) {
	m := New()

	a := Register[preferences](m, GroupApp, "Preferences")
	b := Register[scriptingMode](m, GroupApp, "ScriptingMode")
	c := Register[session](m, GroupProject, "Session")

	if a.Uint32() != 0 || b.Uint32() != 1 || c.Uint32() != 0 {
		t.Fatalf("unexpected handles %v %v %v", a, b, c)
	}
	if got := m.Names(GroupApp); len(got) != 2 || got[0] != "Preferences" || got[1] != "ScriptingMode" {
		t.Fatalf("unexpected names %v", got)
	}
	if h, ok := m.Lookup(GroupApp, "ScriptingMode"); !ok || h != b {
		t.Fatalf("lookup returned %v, %v", h, ok)
	}
	if _, ok := m.Lookup(GroupProject, "Preferences"); ok {
		t.Fatalf("names are scoped to their group")
	}
	if _, ok := m.Lookup(Group(9), "Preferences"); ok {
		t.Fatalf("unknown groups have no names")
	}
}

func TestRegisterGrowsGroupsLazily(t *testing.T) {
	m := New()
	if m.Groups() != 0 {
		t.Fatalf("expected no groups, got %d", m.Groups())
	}
	Register[scriptingMode](m, Group(3), "Late")
	if m.Groups() != 4 {
		t.Fatalf("expected groups up to index 3, got %d", m.Groups())
	}
	if m.Len(GroupProject) != 0 || len(m.Names(GroupProject)) != 0 {
		t.Fatalf("skipped groups must be empty")
	}
	if info := m.GroupInfo(Group(3)); info.Name != "group-3" {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestRegisterStartsFromDefaults(t *testing.T) {
	m := New()
	h := Register[preferences](m, GroupApp, "Preferences")

	got := *Get[preferences](m, GroupApp, h)
	want := preferences{DefaultFontSize: 18, FramerateLimit: 150, ShowMetaOnNew: true}
	if got != want {
		t.Fatalf("expected defaults %+v, got %+v", want, got)
	}
}

func TestRegisterConflictingTypePanics(t *testing.T) {
	m := New()
	Register[preferences](m, GroupApp, "Preferences")

	err := expectContractPanic(t, ErrTypeMismatch, func() {
		Register[scriptingMode](m, GroupApp, "Preferences")
	})
	if err.Op != "register" || err.Name != "Preferences" || err.Group != GroupApp {
		t.Fatalf("unexpected contract error %+v", err)
	}
}

func TestRegisterEmptyNamePanics(t *testing.T) {
	expectContractPanic(t, ErrEmptyName, func() {
		Register[preferences](New(), GroupApp, "")
	})
}

func TestGetContractViolations(t *testing.T) {
	m := New()
	h := Register[preferences](m, GroupApp, "Preferences")

	expectContractPanic(t, ErrTypeMismatch, func() {
		Get[scriptingMode](m, GroupApp, h)
	})
	expectContractPanic(t, ErrHandleOutOfRange, func() {
		Get[preferences](m, GroupApp, NewTypedID[SlotDomain](5))
	})
	expectContractPanic(t, ErrHandleOutOfRange, func() {
		Get[preferences](m, GroupApp, InvalidHandle)
	})
	expectContractPanic(t, ErrGroupOutOfRange, func() {
		Get[preferences](m, GroupProject, h)
	})
}

func TestTryGetReturnsViolations(t *testing.T) {
	m := New()
	h := Register[preferences](m, GroupApp, "Preferences")

	if _, err := TryGet[scriptingMode](m, GroupApp, h); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
	var contract *ContractError
	if _, err := TryGet[preferences](m, Group(4), h); !errors.As(err, &contract) || contract.Op != "get" {
		t.Fatalf("expected get contract error, got %v", err)
	}
	value, err := TryGet[preferences](m, GroupApp, h)
	if err != nil || value != Get[preferences](m, GroupApp, h) {
		t.Fatalf("expected the live pointer, got %p, %v", value, err)
	}
}

func TestPeekReturnsDetachedCopy(t *testing.T) {
	m := New()
	h := Register[session](m, GroupProject, "Session")
	live := Get[session](m, GroupProject, h)
	live.RecentFiles = []recentFile{{Name: "a.funscript"}}
	live.Samples = Bytes{1, 2}

	copied := Peek[session](m, GroupProject, h)
	copied.RecentFiles[0].Name = "changed"
	copied.Samples[0] = 9

	if live.RecentFiles[0].Name != "a.funscript" || live.Samples[0] != 1 {
		t.Fatalf("peek must not share memory with the live value: %+v", live)
	}
}

func TestDefaultManagerIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatalf("expected the same process-wide manager")
	}
}

func TestGroupNameOption(t *testing.T) {
	m := New(WithGroupName(GroupProject, "document", ""))
	Register[session](m, GroupProject, "Session")

	info := m.GroupInfo(GroupProject)
	if info.Name != "document" || info.Label != "Project" {
		t.Fatalf("unexpected info %+v", info)
	}
	if m.GroupInfo(GroupApp).Name != "app" {
		t.Fatalf("expected default app name")
	}
}

func TestSlotHooks(t *testing.T) {
	m := New()
	h := Register[preferences](m, GroupApp, "Preferences",
		WithPreHook[preferences](func(_ HookContext, payload map[string]any) (map[string]any, error) {
			if legacy, ok := payload["fpsLimit"]; ok {
				payload["framerateLimit"] = legacy
				delete(payload, "fpsLimit")
			}
			return payload, nil
		}),
		WithPostHook[preferences](func(ctx HookContext, p *preferences) error {
			if ctx.Group != "app" || ctx.Name != "Preferences" {
				return errors.New("unexpected hook context")
			}
			if p.FramerateLimit < 1 {
				return errors.New("framerate limit must be positive")
			}
			return nil
		}),
	)

	if err := m.DeserializeSlot(GroupApp, h, []byte(`{"fpsLimit":60}`)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	if got := Get[preferences](m, GroupApp, h).FramerateLimit; got != 60 {
		t.Fatalf("expected migrated framerate 60, got %d", got)
	}

	err := m.DeserializeSlot(GroupApp, h, []byte(`{"framerateLimit":0}`))
	var slotErr *SlotError
	if !errors.As(err, &slotErr) || slotErr.Name != "Preferences" {
		t.Fatalf("expected slot error, got %v", err)
	}
	if got := Get[preferences](m, GroupApp, h).FramerateLimit; got != 60 {
		t.Fatalf("rejected fragment must leave the value untouched, got %d", got)
	}
}

func TestStrictFieldsOption(t *testing.T) {
	m := New()
	h := Register[scriptingMode](m, GroupApp, "ScriptingMode", WithStrictFields[scriptingMode]())

	if err := m.DeserializeSlot(GroupApp, h, []byte(`{"actionInsertDelayMs":5,"extra":true}`)); err == nil {
		t.Fatalf("expected strict decoding to reject unknown fields")
	}
	if err := m.DeserializeSlot(GroupApp, h, []byte(`{"actionInsertDelayMs":5}`)); err != nil {
		t.Fatalf("deserialize: %v", err)
	}
}

func TestManagerLogsAndCounts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	scope := tally.NewTestScope("", nil)
	m := New(WithLogger(zap.New(core)), WithMetrics(scope))

	Register[preferences](m, GroupApp, "Preferences")
	Register[scriptingMode](m, GroupApp, "ScriptingMode")
	m.SerializeGroup(GroupApp)
	m.DeserializeGroup(GroupApp, []byte(`{"Preferences":{"framerateLimit":"fast"}}`))
	m.DeserializeGroup(GroupApp, []byte(`{not valid`))
	m.ClearGroup(GroupApp)

	if n := logs.FilterMessage("state fragment rejected").Len(); n != 1 {
		t.Fatalf("expected one warning for the rejected fragment, got %d", n)
	}
	if n := logs.FilterMessage("rejected group document").Len(); n != 1 {
		t.Fatalf("expected one log for the malformed document, got %d", n)
	}

	want := map[string]int64{
		"statereg.registrations":  2,
		"statereg.serializations": 1,
		"statereg.loads":          1,
		"statereg.load_failures":  1,
		"statereg.slot_failures":  1,
		"statereg.clears":         1,
	}
	got := map[string]int64{}
	for _, counter := range scope.Snapshot().Counters() {
		if counter.Tags()["group"] == "app" {
			got[counter.Name()] = counter.Value()
		}
	}
	for name, value := range want {
		if got[name] != value {
			t.Fatalf("counter %s: want %d, got %d (all: %v)", name, value, got[name], got)
		}
	}
}

func TestManagerEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	m := New(WithActivityHooks(activity.Hooks{capture}), WithActor("tester"))

	Register[preferences](m, GroupApp, "Preferences")
	m.SerializeGroup(GroupApp)
	m.DeserializeGroup(GroupApp, []byte(`{"Preferences":{},"Unknown":1}`))
	m.DeserializeGroup(GroupApp, []byte(`[]`))
	m.ClearGroup(GroupApp)

	for _, event := range capture.Events {
		if event.ActorID != "tester" || event.Channel != activity.DefaultChannel {
			t.Fatalf("unexpected event envelope %+v", event)
		}
	}
	want := []string{
		activity.VerbStateRegistered,
		activity.VerbGroupSerialized,
		activity.VerbGroupLoaded,
		activity.VerbGroupLoadFailed,
		activity.VerbGroupCleared,
	}
	verbs := capture.Verbs()
	if len(verbs) != len(want) {
		t.Fatalf("expected verbs %v, got %v", want, verbs)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Fatalf("expected verbs %v, got %v", want, verbs)
		}
	}
	if slotEvents := capture.ForObject("app/Preferences"); len(slotEvents) != 1 {
		t.Fatalf("expected one registration event for the slot, got %d", len(slotEvents))
	}
	if groupEvents := capture.ForObject("app"); len(groupEvents) != 4 {
		t.Fatalf("expected four group events, got %d", len(groupEvents))
	}
	loaded := capture.Events[2]
	if unknown, _ := loaded.Metadata["unknown"].([]string); len(unknown) != 1 || unknown[0] != "Unknown" {
		t.Fatalf("expected unknown key metadata, got %+v", loaded.Metadata)
	}
}

func TestRegisterPropertyIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := New()
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Z][a-z]{0,8}`), 1, 8, rapid.ID[string]).Draw(t, "names")
		order := rapid.SliceOfN(rapid.IntRange(0, len(names)-1), 1, 32).Draw(t, "order")

		handles := map[string]Handle{}
		for _, idx := range order {
			name := names[idx]
			h := Register[scriptingMode](m, GroupApp, name)
			if prev, ok := handles[name]; ok && prev != h {
				t.Fatalf("handle for %q changed from %v to %v", name, prev, h)
			}
			handles[name] = h
		}
		if m.Len(GroupApp) != len(handles) {
			t.Fatalf("expected %d slots, got %d", len(handles), m.Len(GroupApp))
		}
		for i, name := range m.Names(GroupApp) {
			if handles[name].Uint32() != uint32(i) {
				t.Fatalf("handle of %q should equal its position %d", name, i)
			}
		}
	})
}

func TestRegisterRejectsGroupsPastLimit(t *testing.T) {
	m := New()

	for _, group := range []Group{MaxGroups, Group(1 << 31), Group(math.MaxUint32)} {
		expectContractPanic(t, ErrGroupOutOfRange, func() {
			Register[preferences](m, group, "Preferences")
		})
	}
	if m.Groups() != 0 {
		t.Fatalf("rejected registrations must not create groups, got %d", m.Groups())
	}

	last := MaxGroups - 1
	h := Register[preferences](m, last, "Preferences")
	if m.Groups() != int(MaxGroups) || Get[preferences](m, last, h).FramerateLimit != 150 {
		t.Fatalf("expected the last allowed group to register")
	}
}
