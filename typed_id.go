package statereg

import (
	"cmp"
	"fmt"
)

// InvalidValue is the raw sentinel reserved for unregistered identifiers.
const InvalidValue uint32 = 0xFFFFFFFF

// TypedID is a 32-bit identifier bound to a phantom domain D. Identifiers from
// different domains are distinct Go types and cannot be compared or mixed
// without an explicit conversion through Uint32.
type TypedID[D any] struct {
	value uint32
}

// NewTypedID wraps v as an identifier in domain D.
func NewTypedID[D any](v uint32) TypedID[D] {
	return TypedID[D]{value: v}
}

// InvalidID returns the sentinel identifier for domain D.
func InvalidID[D any]() TypedID[D] {
	return TypedID[D]{value: InvalidValue}
}

// Uint32 returns the raw identifier value.
func (id TypedID[D]) Uint32() uint32 {
	return id.value
}

// Valid reports whether id is not the sentinel.
func (id TypedID[D]) Valid() bool {
	return id.value != InvalidValue
}

// Compare orders identifiers by their raw value.
func (id TypedID[D]) Compare(other TypedID[D]) int {
	return cmp.Compare(id.value, other.value)
}

// Less reports whether id sorts before other.
func (id TypedID[D]) Less(other TypedID[D]) bool {
	return id.value < other.value
}

func (id TypedID[D]) String() string {
	if !id.Valid() {
		return "invalid"
	}
	return fmt.Sprintf("%d", id.value)
}

// SlotDomain tags identifiers that address a slot inside a group.
type SlotDomain struct{}

// Handle identifies one slot within one group. Handles are stable for the
// lifetime of the Manager that issued them.
type Handle = TypedID[SlotDomain]

// InvalidHandle is returned by zero-value scoped handles.
var InvalidHandle = InvalidID[SlotDomain]()

func (id TypedID[D]) index() int {
	return int(id.value)
}
