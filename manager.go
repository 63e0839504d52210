// Package statereg is a typed registry of application and project state.
//
// State types register once at startup under a group and a name and receive a
// Handle. Values are read and written through the pointer returned by Get, and
// each group can be serialized to one JSON document, restored from one, or
// reset to defaults. A Manager is driven from a single goroutine and performs
// no locking; work on other goroutines should receive copies from Peek.
package statereg

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/goliatone/go-statereg/internal/deepcopy"
	"github.com/goliatone/go-statereg/pkg/activity"
	"github.com/goliatone/go-statereg/query"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	logger   *zap.Logger
	metrics  tally.Scope
	hooks    activity.Hooks
	actorID  string
	indent   string
	groupIDs map[Group]GroupInfo
	programs query.ProgramCache
}

// DefaultProgramTTL bounds how long compiled queries stay cached.
const DefaultProgramTTL = 10 * time.Minute

// WithLogger routes registry logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *managerConfig) {
		cfg.logger = logger
	}
}

// WithMetrics reports registry counters on scope.
func WithMetrics(scope tally.Scope) Option {
	return func(cfg *managerConfig) {
		cfg.metrics = scope
	}
}

// WithActivityHooks fans group lifecycle events out to hooks. Nil entries are
// dropped.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := activity.CloneHooks(hooks)
	return func(cfg *managerConfig) {
		cfg.hooks = normalized
	}
}

// WithActor stamps emitted activity events with actorID.
func WithActor(actorID string) Option {
	return func(cfg *managerConfig) {
		cfg.actorID = actorID
	}
}

// WithIndent makes SerializeGroup indent nested fragments with indent.
func WithIndent(indent string) Option {
	return func(cfg *managerConfig) {
		cfg.indent = indent
	}
}

// WithProgramCache shares compiled query programs used by Evaluate.
func WithProgramCache(cache query.ProgramCache) Option {
	return func(cfg *managerConfig) {
		cfg.programs = cache
	}
}

// WithGroupName overrides the name and label used for group in logs, metric
// tags, activity events and schemas.
func WithGroupName(group Group, name, label string) Option {
	return func(cfg *managerConfig) {
		if cfg.groupIDs == nil {
			cfg.groupIDs = map[Group]GroupInfo{}
		}
		info := defaultGroupInfo(group)
		if name != "" {
			info.Name = name
		}
		if label != "" {
			info.Label = label
		}
		cfg.groupIDs[group] = info
	}
}

// Manager owns every registered slot, grouped by scope.
type Manager struct {
	cfg     managerConfig
	log     *zap.Logger
	stats   *registryMetrics
	emitter *activity.Emitter
	groups  []*stateGroup
}

// New constructs an empty Manager.
func New(opts ...Option) *Manager {
	cfg := managerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.metrics == nil {
		cfg.metrics = tally.NoopScope
	}
	if cfg.programs == nil {
		cfg.programs = query.NewMemoryCache(DefaultProgramTTL)
	}
	return &Manager{
		cfg:     cfg,
		log:     cfg.logger.Named("statereg"),
		stats:   newRegistryMetrics(cfg.metrics),
		emitter: activity.NewEmitter(cfg.hooks, activity.Config{Enabled: true}),
	}
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns a process-wide Manager created on first use. Applications
// that prefer explicit wiring should construct their own with New.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = New()
	})
	return defaultManager
}

// Register binds name in group to type T and returns its handle. The first
// registration creates a slot holding T's default value; later registrations
// of the same name and type return the same handle and ignore opts.
// Registering a name with a different type panics with a *ContractError.
func Register[T any](m *Manager, group Group, name string, opts ...SlotOption[T]) Handle {
	if name == "" {
		panic(violation("register", group, name, InvalidHandle, ErrEmptyName))
	}
	if group >= MaxGroups {
		panic(violation("register", group, name, InvalidHandle, ErrGroupOutOfRange))
	}
	g := m.ensureGroup(group)
	typ := reflect.TypeFor[T]()

	if h, ok := g.lookup(name); ok {
		existing, _ := g.slot(h)
		if existing.typ != typ {
			panic(violation("register", group, name, h, mismatch(existing.typ, typ)))
		}
		m.log.Debug("state already registered",
			zap.String("group", g.info.Name),
			zap.String("state", name),
			zap.Uint32("handle", h.Uint32()),
		)
		return h
	}

	s, err := newSlot(name, g.info, opts)
	if err != nil {
		// Only a post-hook rejecting the default can fail here.
		panic(violation("register", group, name, InvalidHandle, err))
	}
	h := g.append(s)

	m.log.Debug("state registered",
		zap.String("group", g.info.Name),
		zap.String("state", name),
		zap.Stringer("type", typ),
		zap.Uint32("handle", h.Uint32()),
	)
	m.stats.group(g.info).registrations.Inc(1)
	m.emit(activity.BuildStateRegisteredEvent(activity.SlotEventInput{
		Group:   g.info.Name,
		Name:    name,
		Type:    typ.String(),
		Handle:  h.Uint32(),
		ActorID: m.cfg.actorID,
	}))
	return h
}

// Get returns the live value addressed by handle. The pointer stays valid for
// the Manager's lifetime; deserialization and clearing write through it.
// Unknown groups, foreign handles and type mismatches panic with a
// *ContractError.
func Get[T any](m *Manager, group Group, handle Handle) *T {
	value, err := TryGet[T](m, group, handle)
	if err != nil {
		panic(err)
	}
	return value
}

// TryGet is Get returning the contract violation instead of panicking.
func TryGet[T any](m *Manager, group Group, handle Handle) (*T, error) {
	s, err := m.resolve("get", group, handle)
	if err != nil {
		return nil, err
	}
	value, ok := typedValue[T](s)
	if !ok {
		return nil, violation("get", group, s.name, handle, mismatch(s.typ, reflect.TypeFor[T]()))
	}
	return value, nil
}

// Peek returns a deep copy of the value addressed by handle, safe to hand to
// another goroutine.
func Peek[T any](m *Manager, group Group, handle Handle) T {
	return deepcopy.Clone(*Get[T](m, group, handle))
}

// Lookup returns the handle registered for name in group.
func (m *Manager) Lookup(group Group, name string) (Handle, bool) {
	g, ok := m.group(group)
	if !ok {
		return InvalidHandle, false
	}
	return g.lookup(name)
}

// Names lists the names registered in group in registration order.
func (m *Manager) Names(group Group) []string {
	g, ok := m.group(group)
	if !ok {
		return nil
	}
	return g.names()
}

// Len reports how many states are registered in group.
func (m *Manager) Len(group Group) int {
	g, ok := m.group(group)
	if !ok {
		return 0
	}
	return len(g.entries)
}

// Groups reports how many groups exist. Groups are created on first
// registration, including any lower-numbered groups skipped over.
func (m *Manager) Groups() int {
	return len(m.groups)
}

// GroupInfo returns the name and label used for group.
func (m *Manager) GroupInfo(group Group) GroupInfo {
	if g, ok := m.group(group); ok {
		return g.info
	}
	return m.infoFor(group)
}

func (m *Manager) infoFor(group Group) GroupInfo {
	if info, ok := m.cfg.groupIDs[group]; ok {
		return info
	}
	return defaultGroupInfo(group)
}

func (m *Manager) programs() query.ProgramCache {
	return m.cfg.programs
}

func (m *Manager) ensureGroup(group Group) *stateGroup {
	for Group(len(m.groups)) <= group {
		m.groups = append(m.groups, newStateGroup(m.infoFor(Group(len(m.groups)))))
	}
	return m.groups[group]
}

func (m *Manager) group(group Group) (*stateGroup, bool) {
	if int(group) >= len(m.groups) {
		return nil, false
	}
	return m.groups[group], true
}

func (m *Manager) resolve(op string, group Group, handle Handle) (*slot, error) {
	g, ok := m.group(group)
	if !ok {
		return nil, violation(op, group, "", handle, ErrGroupOutOfRange)
	}
	s, ok := g.slot(handle)
	if !ok {
		return nil, violation(op, group, "", handle, ErrHandleOutOfRange)
	}
	return s, nil
}

func (m *Manager) emit(event activity.Event) {
	if !m.emitter.Enabled() {
		return
	}
	if err := m.emitter.Emit(context.Background(), event); err != nil {
		m.log.Warn("activity hook failed",
			zap.String("verb", event.Verb),
			zap.String("object", event.ObjectID),
			zap.Error(err),
		)
	}
}
