package statereg

import "fmt"

// Group indexes a state scope inside a Manager.
type Group uint32

const (
	// GroupApp holds application-lifetime state such as preferences.
	GroupApp Group = 0
	// GroupProject holds state tied to the currently open document.
	GroupProject Group = 1

	// MaxGroups bounds the group indices a Manager accepts. Registering past
	// it is a contract violation.
	MaxGroups Group = 256
)

// GroupInfo carries the human-facing identity of a group. It labels logs,
// metric tags, activity events and schema titles.
type GroupInfo struct {
	Name  string
	Label string
}

func defaultGroupInfo(group Group) GroupInfo {
	switch group {
	case GroupApp:
		return GroupInfo{Name: "app", Label: "Application"}
	case GroupProject:
		return GroupInfo{Name: "project", Label: "Project"}
	default:
		name := fmt.Sprintf("group-%d", group)
		return GroupInfo{Name: name, Label: name}
	}
}

// stateGroup is an append-only list of slots plus the name index used to
// detect repeated registrations. A handle is the slot's position in entries.
type stateGroup struct {
	info    GroupInfo
	handles map[string]Handle
	entries []*slot
}

func newStateGroup(info GroupInfo) *stateGroup {
	return &stateGroup{
		info:    info,
		handles: make(map[string]Handle),
	}
}

func (g *stateGroup) lookup(name string) (Handle, bool) {
	h, ok := g.handles[name]
	return h, ok
}

func (g *stateGroup) append(s *slot) Handle {
	h := NewTypedID[SlotDomain](uint32(len(g.entries)))
	g.entries = append(g.entries, s)
	g.handles[s.name] = h
	return h
}

func (g *stateGroup) slot(h Handle) (*slot, bool) {
	if !h.Valid() || h.index() >= len(g.entries) {
		return nil, false
	}
	return g.entries[h.index()], true
}

func (g *stateGroup) names() []string {
	out := make([]string, len(g.entries))
	for i, s := range g.entries {
		out[i] = s.name
	}
	return out
}
