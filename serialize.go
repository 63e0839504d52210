package statereg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-statereg/pkg/activity"
	"go.uber.org/zap"
)

// LoadReport describes how a group document was applied.
type LoadReport struct {
	// Applied lists registered names found in the document and decoded.
	Applied []string
	// Missing lists registered names absent from the document. Their values
	// were left untouched.
	Missing []string
	// Failed maps registered names whose fragment could not be decoded to the
	// decode error. Their values were left untouched.
	Failed map[string]error
	// Unknown lists document keys that match no registered name.
	Unknown []string
}

// OK reports whether every fragment present in the document was applied.
func (r LoadReport) OK() bool {
	return len(r.Failed) == 0
}

// SerializeGroup encodes every state in group as one JSON object keyed by
// name, in registration order. A group without registrations encodes as {}.
// A state that cannot be encoded is a contract violation and panics.
func (m *Manager) SerializeGroup(group Group) []byte {
	g, ok := m.group(group)
	if !ok || len(g.entries) == 0 {
		return []byte("{}")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range g.entries {
		fragment, err := s.encode()
		if err != nil {
			panic(violation("serialize", group, s.name, NewTypedID[SlotDomain](uint32(i)), err))
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(s.name)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(fragment)
	}
	buf.WriteByte('}')

	out := buf.Bytes()
	if m.cfg.indent != "" {
		var indented bytes.Buffer
		if err := json.Indent(&indented, out, "", m.cfg.indent); err == nil {
			out = indented.Bytes()
		}
	}

	stats := m.stats.group(g.info)
	stats.serializations.Inc(1)
	stats.documentBytes.RecordValue(float64(len(out)))
	m.emit(activity.BuildGroupSerializedEvent(activity.GroupEventInput{
		Group:   g.info.Name,
		Label:   g.info.Label,
		ActorID: m.cfg.actorID,
		Size:    len(out),
		Slots:   g.names(),
	}))
	return out
}

// DeserializeGroup applies a document produced by SerializeGroup. It returns
// false, touching nothing, when data is not a JSON object. Otherwise every
// registered name present in data is decoded over its type's default, names
// absent from data keep their current value, and unknown names are ignored.
func (m *Manager) DeserializeGroup(group Group, data []byte) bool {
	_, err := m.DeserializeGroupReport(group, data)
	return err == nil
}

// DeserializeGroupReport is DeserializeGroup with a detailed report. The
// error wraps ErrMalformedDocument when the document was rejected as a whole.
// Fragments that fail to decode are listed in the report and do not fail the
// call.
func (m *Manager) DeserializeGroupReport(group Group, data []byte) (LoadReport, error) {
	info := m.GroupInfo(group)

	document, err := parseDocument(data)
	if err != nil {
		m.log.Info("rejected group document",
			zap.String("group", info.Name),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		m.stats.group(info).loadFailures.Inc(1)
		m.emit(activity.BuildGroupLoadFailedEvent(activity.GroupEventInput{
			Group:   info.Name,
			Label:   info.Label,
			ActorID: m.cfg.actorID,
			Size:    len(data),
			Err:     err,
		}))
		return LoadReport{}, err
	}

	report := LoadReport{}
	var failed []string
	registered := map[string]struct{}{}
	if g, ok := m.group(group); ok {
		for _, s := range g.entries {
			registered[s.name] = struct{}{}
			raw, present := document[s.name]
			if !present {
				report.Missing = append(report.Missing, s.name)
				continue
			}
			if err := s.decode(raw); err != nil {
				if report.Failed == nil {
					report.Failed = map[string]error{}
				}
				report.Failed[s.name] = &SlotError{Name: s.name, Err: err}
				failed = append(failed, s.name)
				m.log.Warn("state fragment rejected",
					zap.String("group", info.Name),
					zap.String("state", s.name),
					zap.Error(err),
				)
				continue
			}
			report.Applied = append(report.Applied, s.name)
		}
	}
	for _, key := range documentKeys(data, document) {
		if _, ok := registered[key]; !ok {
			report.Unknown = append(report.Unknown, key)
		}
	}

	stats := m.stats.group(info)
	stats.loads.Inc(1)
	if len(report.Failed) > 0 {
		stats.slotFailures.Inc(int64(len(report.Failed)))
	}
	m.log.Debug("group document applied",
		zap.String("group", info.Name),
		zap.Strings("applied", report.Applied),
		zap.Strings("missing", report.Missing),
		zap.Strings("unknown", report.Unknown),
	)
	m.emit(activity.BuildGroupLoadedEvent(activity.GroupEventInput{
		Group:   info.Name,
		Label:   info.Label,
		ActorID: m.cfg.actorID,
		Size:    len(data),
		Applied: report.Applied,
		Missing: report.Missing,
		Failed:  failed,
		Unknown: report.Unknown,
	}))
	return report, nil
}

// ClearGroup resets every state in group to its type's default value. Names
// stay registered and handles stay valid.
func (m *Manager) ClearGroup(group Group) {
	g, ok := m.group(group)
	if !ok {
		return
	}
	for i, s := range g.entries {
		if err := s.reset(); err != nil {
			panic(violation("clear", group, s.name, NewTypedID[SlotDomain](uint32(i)), err))
		}
	}

	m.stats.group(g.info).clears.Inc(1)
	m.log.Debug("group cleared", zap.String("group", g.info.Name), zap.Int("states", len(g.entries)))
	m.emit(activity.BuildGroupClearedEvent(activity.GroupEventInput{
		Group:   g.info.Name,
		Label:   g.info.Label,
		ActorID: m.cfg.actorID,
		Slots:   g.names(),
	}))
}

// SerializeSlot encodes the single state addressed by handle.
func (m *Manager) SerializeSlot(group Group, handle Handle) ([]byte, error) {
	s, err := m.resolve("serialize", group, handle)
	if err != nil {
		return nil, err
	}
	return s.encode()
}

// DeserializeSlot decodes data over the default of the state addressed by
// handle. On error the live value is left untouched.
func (m *Manager) DeserializeSlot(group Group, handle Handle, data []byte) error {
	s, err := m.resolve("deserialize", group, handle)
	if err != nil {
		return err
	}
	if err := s.decode(data); err != nil {
		return &SlotError{Name: s.name, Err: err}
	}
	return nil
}

func parseDocument(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top level is not an object", ErrMalformedDocument)
	}
	var document map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return document, nil
}

// documentKeys returns the top-level keys of data in document order.
func documentKeys(data []byte, document map[string]json.RawMessage) []string {
	if len(document) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	keys := make([]string, 0, len(document))
	seen := make(map[string]struct{}, len(document))
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := token.(string)
		if !ok {
			break
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			break
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// IsMalformed reports whether err marks a document rejected as a whole.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedDocument)
}
