package statereg

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-statereg/internal/hydrate"
)

// HookContext identifies the slot a hook runs for.
type HookContext = hydrate.Context

// PreHook rewrites the object form of a persisted fragment before it is
// decoded. It is the place to migrate renamed or reshaped fields.
type PreHook = hydrate.PreHook

// slot stores one type-erased value together with the functions bound to its
// concrete type at registration. value always holds the same *T; decode and
// reset write through it so pointers handed out by Get stay live.
type slot struct {
	name   string
	typ    reflect.Type
	value  any
	encode func() ([]byte, error)
	decode func(raw []byte) error
	reset  func() error
	fresh  func() (any, error)
}

// SlotOption configures how a state type is decoded. Options only take effect
// on the first registration of a name.
type SlotOption[T any] func(*slotConfig[T])

type slotConfig[T any] struct {
	decoderOpts []hydrate.DecoderOption[T]
}

// WithPreHook migrates the raw object form of the fragment before decoding.
func WithPreHook[T any](hook PreHook) SlotOption[T] {
	return func(cfg *slotConfig[T]) {
		if hook == nil {
			return
		}
		cfg.decoderOpts = append(cfg.decoderOpts, hydrate.WithPreHook[T](hook))
	}
}

// WithPostHook validates or normalises a decoded value. A post-hook error
// rejects the fragment and leaves the live value untouched.
func WithPostHook[T any](hook func(HookContext, *T) error) SlotOption[T] {
	return func(cfg *slotConfig[T]) {
		if hook == nil {
			return
		}
		cfg.decoderOpts = append(cfg.decoderOpts, hydrate.WithPostHook[T](hook))
	}
}

// WithStrictFields rejects fragments carrying fields unknown to T.
func WithStrictFields[T any]() SlotOption[T] {
	return func(cfg *slotConfig[T]) {
		cfg.decoderOpts = append(cfg.decoderOpts, hydrate.WithDisallowUnknownFields[T]())
	}
}

func newSlot[T any](name string, info GroupInfo, opts []SlotOption[T]) (*slot, error) {
	cfg := slotConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := append([]hydrate.DecoderOption[T]{hydrate.WithFactory[T](newDefault[T])}, cfg.decoderOpts...)
	decoder := hydrate.NewDecoder(decoderOpts...)
	ctx := hydrate.Context{Name: name, Group: info.Name}

	initial, err := decoder.Default(ctx)
	if err != nil {
		return nil, err
	}
	ptr := &initial

	return &slot{
		name:  name,
		typ:   reflect.TypeFor[T](),
		value: ptr,
		encode: func() ([]byte, error) {
			out, err := json.Marshal(ptr)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrEncode, name, err)
			}
			return out, nil
		},
		decode: func(raw []byte) error {
			next, err := decoder.Decode(ctx, raw)
			if err != nil {
				return err
			}
			*ptr = next
			return nil
		},
		reset: func() error {
			next, err := decoder.Default(ctx)
			if err != nil {
				return err
			}
			*ptr = next
			return nil
		},
		fresh: func() (any, error) {
			next, err := decoder.Default(ctx)
			if err != nil {
				return nil, err
			}
			return next, nil
		},
	}, nil
}

func typedValue[T any](s *slot) (*T, bool) {
	ptr, ok := s.value.(*T)
	return ptr, ok
}
