package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Context identifies the state a payload belongs to.
type Context struct {
	Name  string
	Group string
}

// PreHook lets callers rewrite the generic object form of a payload before
// decoding, typically to migrate fields persisted by older versions.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// Factory builds the default value a payload is overlaid onto.
type Factory[T any] func() T

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder overlays JSON payloads onto freshly built default values.
type Decoder[T any] struct {
	factory      Factory[T]
	preHooks     []PreHook
	postHooks    []PostHook[T]
	configureDec []func(*json.Decoder)
}

// WithFactory sets the default value builder. Without one the zero value is used.
func WithFactory[T any](factory Factory[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.factory = factory
	}
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber enables json.Decoder.UseNumber during decoding.
func WithUseNumber[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.UseNumber()
		})
	}
}

// WithDisallowUnknownFields invokes json.Decoder.DisallowUnknownFields.
func WithDisallowUnknownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configureDec = append(d.configureDec, func(dec *json.Decoder) {
			dec.DisallowUnknownFields()
		})
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig[T any](configure func(*json.Decoder)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Default builds a default value and runs the post-hooks over it.
func (d *Decoder[T]) Default(ctx Context) (T, error) {
	result := d.build()
	if err := d.runPostHooks(ctx, &result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Decode overlays raw onto a default value. Fields missing from raw keep
// their defaults; fields unknown to T are ignored unless the decoder was
// configured to reject them.
func (d *Decoder[T]) Decode(ctx Context, raw []byte) (T, error) {
	var zero T

	if len(bytes.TrimSpace(raw)) == 0 {
		return zero, fmt.Errorf("hydrate: empty payload for %q", ctx.Name)
	}

	payload, err := d.runPreHooks(ctx, raw)
	if err != nil {
		return zero, err
	}

	result := d.build()
	decoder := json.NewDecoder(bytes.NewReader(payload))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %q: %w", ctx.Name, err)
	}

	if err := d.runPostHooks(ctx, &result); err != nil {
		return zero, err
	}
	return result, nil
}

func (d *Decoder[T]) build() T {
	if d.factory != nil {
		return d.factory()
	}
	var zero T
	return zero
}

func (d *Decoder[T]) runPreHooks(ctx Context, raw []byte) ([]byte, error) {
	if len(d.preHooks) == 0 {
		return raw, nil
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("hydrate: parse %q: %w", ctx.Name, err)
	}
	current, ok := generic.(map[string]any)
	if !ok {
		// Hooks only understand object payloads.
		return raw, nil
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Name, err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("hydrate: marshal payload for %q: %w", ctx.Name, err)
	}
	return buffer, nil
}

func (d *Decoder[T]) runPostHooks(ctx Context, result *T) error {
	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, result); err != nil {
			return fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Name, err)
		}
	}
	return nil
}
