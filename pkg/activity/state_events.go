package activity

import (
	"strings"
	"time"
)

// Verbs emitted for state group lifecycle changes.
const (
	VerbGroupSerialized = "state.group.serialized"
	VerbGroupLoaded     = "state.group.loaded"
	VerbGroupLoadFailed = "state.group.load_failed"
	VerbGroupCleared    = "state.group.cleared"
	VerbStateRegistered = "state.registered"
)

// Object types used on emitted events.
const (
	ObjectTypeGroup = "state.group"
	ObjectTypeSlot  = "state.slot"
)

// GroupEventInput carries the values used to build a group event.
type GroupEventInput struct {
	Group      string
	Label      string
	ActorID    string
	UserID     string
	TenantID   string
	SnapshotID string
	Size       int
	Slots      []string
	Applied    []string
	Missing    []string
	Failed     []string
	Unknown    []string
	Err        error
	OccurredAt time.Time
}

// SlotEventInput carries the values used to build a registration event.
type SlotEventInput struct {
	Group      string
	Name       string
	Type       string
	Handle     uint32
	ActorID    string
	OccurredAt time.Time
}

// BuildGroupSerializedEvent describes a group written to a document.
func BuildGroupSerializedEvent(input GroupEventInput) Event {
	evt := groupEvent(VerbGroupSerialized, input)
	evt.Metadata["size"] = input.Size
	setList(evt.Metadata, "slots", input.Slots)
	if id := strings.TrimSpace(input.SnapshotID); id != "" {
		evt.Metadata["snapshot_id"] = id
	}
	return evt
}

// BuildGroupLoadedEvent describes a document applied to a group.
func BuildGroupLoadedEvent(input GroupEventInput) Event {
	evt := groupEvent(VerbGroupLoaded, input)
	setList(evt.Metadata, "applied", input.Applied)
	setList(evt.Metadata, "missing", input.Missing)
	setList(evt.Metadata, "failed", input.Failed)
	setList(evt.Metadata, "unknown", input.Unknown)
	if input.Size > 0 {
		evt.Metadata["size"] = input.Size
	}
	return evt
}

// BuildGroupLoadFailedEvent describes a document rejected before any slot
// was touched.
func BuildGroupLoadFailedEvent(input GroupEventInput) Event {
	evt := groupEvent(VerbGroupLoadFailed, input)
	if input.Err != nil {
		evt.Metadata["error"] = input.Err.Error()
	}
	if input.Size > 0 {
		evt.Metadata["size"] = input.Size
	}
	return evt
}

// BuildGroupClearedEvent describes a group reset to defaults.
func BuildGroupClearedEvent(input GroupEventInput) Event {
	evt := groupEvent(VerbGroupCleared, input)
	setList(evt.Metadata, "slots", input.Slots)
	return evt
}

// BuildStateRegisteredEvent describes the first registration of a name.
func BuildStateRegisteredEvent(input SlotEventInput) Event {
	group := strings.TrimSpace(input.Group)
	name := strings.TrimSpace(input.Name)
	meta := map[string]any{
		"group":  group,
		"name":   name,
		"handle": input.Handle,
	}
	if typ := strings.TrimSpace(input.Type); typ != "" {
		meta["type"] = typ
	}
	objectID := name
	if group != "" && name != "" {
		objectID = group + "/" + name
	}
	return Event{
		Verb:       VerbStateRegistered,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectTypeSlot,
		ObjectID:   objectID,
		Metadata:   meta,
		OccurredAt: input.OccurredAt,
	}
}

func groupEvent(verb string, input GroupEventInput) Event {
	group := strings.TrimSpace(input.Group)
	meta := map[string]any{"group": group}
	if label := strings.TrimSpace(input.Label); label != "" {
		meta["label"] = label
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeGroup,
		ObjectID:   group,
		Metadata:   meta,
		OccurredAt: input.OccurredAt,
	}
}

func setList(meta map[string]any, key string, values []string) {
	if len(values) == 0 {
		return
	}
	meta[key] = append([]string(nil), values...)
}
