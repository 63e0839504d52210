package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrETagMismatch is returned by Save when the stored document changed
	// since the caller last read it.
	ErrETagMismatch = errors.New("persist: etag mismatch")
	// ErrMalformed is returned by Session.Load when the stored document was
	// rejected as a whole. The manager is left untouched.
	ErrMalformed = errors.New("persist: malformed document")
	// ErrInvalidRef is returned for refs that cannot be mapped to a key.
	ErrInvalidRef = errors.New("persist: invalid ref")
)

// Ref identifies one persisted group document.
type Ref struct {
	Group string
	Key   string
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Size       int               `json:"size,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one document per Ref.
type Store interface {
	Load(ctx context.Context, ref Ref) (data []byte, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, data []byte, meta Meta) (Meta, error)
}

// Identifier returns the canonical storage key for r.
func (r Ref) Identifier() (string, error) {
	if err := validSegment("group", r.Group); err != nil {
		return "", err
	}
	if err := validSegment("key", r.Key); err != nil {
		return "", err
	}
	return r.Group + "/" + r.Key, nil
}

func (r Ref) String() string {
	return r.Group + "/" + r.Key
}

func validSegment(field, value string) error {
	switch {
	case value == "":
		return fmt.Errorf("%w: %s is required", ErrInvalidRef, field)
	case value == "." || value == "..":
		return fmt.Errorf("%w: %s %q is reserved", ErrInvalidRef, field, value)
	case strings.ContainsAny(value, `/\`):
		return fmt.Errorf("%w: %s %q contains a path separator", ErrInvalidRef, field, value)
	}
	return nil
}

// checkETag compares the caller's expectation with the stored record.
func checkETag(expected Meta, stored Meta, exists bool) error {
	if expected.ETag == "" || !exists || stored.ETag == "" {
		return nil
	}
	if expected.ETag != stored.ETag {
		return fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected.ETag, stored.ETag)
	}
	return nil
}

// stamp fills the metadata a store owns for a newly written document.
func stamp(meta Meta, data []byte, now time.Time) Meta {
	out := cloneMeta(meta)
	if out.SnapshotID == "" {
		out.SnapshotID = newSnapshotID()
	}
	out.ETag = out.SnapshotID
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now.UTC()
	}
	out.Size = len(data)
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
