package statereg

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-statereg/query"
	"github.com/goliatone/go-statereg/schema/openapi"
	"go.uber.org/zap"
)

// FieldDescriptor describes a path in a group document and the JSON type
// found there.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Snapshot returns the group document in generic form: objects as
// map[string]any, arrays as []any and numbers as float64.
func (m *Manager) Snapshot(group Group) (map[string]any, error) {
	var snapshot map[string]any
	if err := json.Unmarshal(m.SerializeGroup(group), &snapshot); err != nil {
		return nil, fmt.Errorf("statereg: snapshot group %d: %w", group, err)
	}
	return snapshot, nil
}

// Evaluate runs expr against the group snapshot. Every registered name is a
// top-level variable and group holds the group name. The expr-lang engine is
// used unless opts select another.
func (m *Manager) Evaluate(group Group, expr string, opts ...query.Option) (any, error) {
	snapshot, err := m.Snapshot(group)
	if err != nil {
		return nil, err
	}
	defaults := []query.Option{
		query.WithProgramCache(m.programs()),
		query.WithLogger(query.LoggerFunc(func(event query.LogEvent) {
			m.log.Debug("state query evaluated",
				zap.String("engine", event.Engine),
				zap.String("expr", event.Expr),
				zap.String("group", event.Group),
				zap.Duration("duration", event.Duration),
				zap.Error(event.Err),
			)
		})),
	}
	runner, err := query.NewRunner(append(defaults, opts...)...)
	if err != nil {
		return nil, err
	}
	return runner.Run(query.Context{Snapshot: snapshot, Group: m.GroupInfo(group).Name}, expr)
}

// Describe flattens the group document into sorted field descriptors.
func (m *Manager) Describe(group Group) ([]FieldDescriptor, error) {
	snapshot, err := m.Snapshot(group)
	if err != nil {
		return nil, err
	}
	descriptors := deriveFieldDescriptors(snapshot, "")
	if descriptors == nil {
		descriptors = []FieldDescriptor{}
	}
	return descriptors, nil
}

// Schema returns a JSON schema for the group document built from every
// state's default value, so properties carry their defaults.
func (m *Manager) Schema(group Group, opts ...openapi.Option) (map[string]any, error) {
	entries, err := m.defaultEntries(group)
	if err != nil {
		return nil, err
	}
	return openapi.NewGenerator(opts...).GroupSchema(m.GroupInfo(group).Label, entries)
}

// SchemaDocument wraps the schemas of every group in an OpenAPI document.
func (m *Manager) SchemaDocument(opts ...openapi.Option) (map[string]any, error) {
	groups := make(map[string][]openapi.Entry, len(m.groups))
	for i := range m.groups {
		entries, err := m.defaultEntries(Group(i))
		if err != nil {
			return nil, err
		}
		groups[m.groups[i].info.Name] = entries
	}
	return openapi.NewGenerator(opts...).Document(groups)
}

func (m *Manager) defaultEntries(group Group) ([]openapi.Entry, error) {
	g, ok := m.group(group)
	if !ok {
		return nil, nil
	}
	entries := make([]openapi.Entry, 0, len(g.entries))
	for _, s := range g.entries {
		value, err := s.fresh()
		if err != nil {
			return nil, &SlotError{Name: s.name, Err: err}
		}
		entries = append(entries, openapi.Entry{Name: s.name, Value: value})
	}
	return entries, nil
}

func deriveFieldDescriptors(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "null"}}
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, deriveFieldDescriptors(typed[key], joinPath(prefix, key))...)
		}
		return fields
	case []any:
		elementType := "any"
		if len(typed) > 0 {
			elementType = typeName(typed[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	default:
		return []FieldDescriptor{{Path: prefix, Type: typeName(typed)}}
	}
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
