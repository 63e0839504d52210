package persist

import (
	"context"
	"fmt"

	statereg "github.com/goliatone/go-statereg"
	"go.uber.org/zap"
)

// Session moves whole groups between a Manager and a Store. It remembers the
// ETag of every document it read or wrote and refuses to overwrite a document
// changed by someone else since. A Session belongs to the goroutine driving
// its Manager.
type Session struct {
	Store   Store
	Manager *statereg.Manager
	Logger  *zap.Logger

	etags map[string]string
}

// NewSession pairs store with manager.
func NewSession(store Store, manager *statereg.Manager, logger *zap.Logger) *Session {
	return &Session{Store: store, Manager: manager, Logger: logger}
}

// Load applies the document stored at ref to group. A missing document keeps
// the current values and returns false. A document rejected as a whole
// returns an error wrapping ErrMalformed and changes nothing. Fragments that
// fail to decode are logged and reported, not returned as errors.
func (s *Session) Load(ctx context.Context, group statereg.Group, ref Ref) (bool, error) {
	report, ok, err := s.LoadReport(ctx, group, ref)
	if err != nil || !ok {
		return ok, err
	}
	if !report.OK() {
		s.logger().Warn("document loaded with rejected states",
			zap.Stringer("ref", ref),
			zap.Int("failed", len(report.Failed)),
		)
	}
	return true, nil
}

// LoadReport is Load returning the registry's per-state report.
func (s *Session) LoadReport(ctx context.Context, group statereg.Group, ref Ref) (statereg.LoadReport, bool, error) {
	if err := s.validate(); err != nil {
		return statereg.LoadReport{}, false, err
	}
	data, meta, ok, err := s.Store.Load(ctx, ref)
	if err != nil {
		return statereg.LoadReport{}, false, fmt.Errorf("persist: load %s: %w", ref, err)
	}
	if !ok {
		s.logger().Debug("no stored document, keeping current state", zap.Stringer("ref", ref))
		return statereg.LoadReport{}, false, nil
	}

	report, err := s.Manager.DeserializeGroupReport(group, data)
	if err != nil {
		return statereg.LoadReport{}, false, fmt.Errorf("%w: %s: %w", ErrMalformed, ref, err)
	}
	s.remember(ref, meta.ETag)
	s.logger().Debug("document loaded",
		zap.Stringer("ref", ref),
		zap.String("snapshot_id", meta.SnapshotID),
		zap.Int("size", len(data)),
	)
	return report, true, nil
}

// Save writes the current document of group to ref.
func (s *Session) Save(ctx context.Context, group statereg.Group, ref Ref) (Meta, error) {
	if err := s.validate(); err != nil {
		return Meta{}, err
	}
	data := s.Manager.SerializeGroup(group)
	meta := Meta{ETag: s.etag(ref)}
	saved, err := s.Store.Save(ctx, ref, data, meta)
	if err != nil {
		return Meta{}, fmt.Errorf("persist: save %s: %w", ref, err)
	}
	s.remember(ref, saved.ETag)
	s.logger().Debug("document saved",
		zap.Stringer("ref", ref),
		zap.String("snapshot_id", saved.SnapshotID),
		zap.Int("size", saved.Size),
	)
	return saved, nil
}

// Forget drops the remembered ETag for ref so the next Save overwrites
// whatever is stored.
func (s *Session) Forget(ref Ref) {
	delete(s.etags, ref.String())
}

func (s *Session) validate() error {
	if s.Store == nil {
		return fmt.Errorf("persist: store is required")
	}
	if s.Manager == nil {
		return fmt.Errorf("persist: manager is required")
	}
	return nil
}

func (s *Session) etag(ref Ref) string {
	return s.etags[ref.String()]
}

func (s *Session) remember(ref Ref, etag string) {
	if etag == "" {
		delete(s.etags, ref.String())
		return
	}
	if s.etags == nil {
		s.etags = map[string]string{}
	}
	s.etags[ref.String()] = etag
}

func (s *Session) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
