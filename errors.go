package statereg

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrEmptyName indicates a registration without a state name.
	ErrEmptyName = errors.New("statereg: state name must not be empty")
	// ErrTypeMismatch indicates a name or handle used with a type other than
	// the one it was registered with.
	ErrTypeMismatch = errors.New("statereg: state type mismatch")
	// ErrGroupOutOfRange indicates access to a group nothing was registered in.
	ErrGroupOutOfRange = errors.New("statereg: group out of range")
	// ErrHandleOutOfRange indicates a handle not issued by the group.
	ErrHandleOutOfRange = errors.New("statereg: handle out of range")
	// ErrEncode indicates a slot serializer failed.
	ErrEncode = errors.New("statereg: encode state")
	// ErrMalformedDocument indicates a group document whose top level is not an
	// object.
	ErrMalformedDocument = errors.New("statereg: malformed group document")
)

// ContractError describes a programmer contract violation. The manager panics
// with a *ContractError; these are wiring bugs, not data problems.
type ContractError struct {
	Op     string
	Group  Group
	Name   string
	Handle Handle
	Err    error
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	target := e.Name
	if target == "" {
		target = "handle=" + e.Handle.String()
	}
	return fmt.Sprintf("statereg: %s group=%d %s: %v", e.Op, e.Group, target, e.Err)
}

func (e *ContractError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func violation(op string, group Group, name string, handle Handle, err error) *ContractError {
	return &ContractError{
		Op:     op,
		Group:  group,
		Name:   name,
		Handle: handle,
		Err:    err,
	}
}

func mismatch(registered, requested reflect.Type) error {
	return fmt.Errorf("%w: registered as %s, requested %s", ErrTypeMismatch, registered, requested)
}

// SlotError records a per-slot failure during group deserialization.
type SlotError struct {
	Name string
	Err  error
}

func (e *SlotError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("statereg: state %q: %v", e.Name, e.Err)
}

func (e *SlotError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
