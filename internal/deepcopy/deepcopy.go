// Package deepcopy duplicates state values so a copy shares no memory with
// the live slot.
package deepcopy

import "reflect"

// Clone returns a deep copy of value. Pointers, maps, slices, arrays and
// interfaces are duplicated recursively; unexported struct fields come back
// as their zero value.
func Clone[T any](value T) T {
	src := reflect.ValueOf(&value).Elem()
	out := reflect.New(src.Type())
	copyInto(out.Elem(), src)
	return *out.Interface().(*T)
}

// copyInto fills dst, a settable zero value of src's type, from src.
func copyInto(dst, src reflect.Value) {
	switch src.Kind() {
	case reflect.Pointer:
		if src.IsNil() {
			return
		}
		target := reflect.New(src.Type().Elem())
		copyInto(target.Elem(), src.Elem())
		dst.Set(target)
	case reflect.Interface:
		if src.IsNil() {
			return
		}
		inner := src.Elem()
		target := reflect.New(inner.Type()).Elem()
		copyInto(target, inner)
		dst.Set(target)
	case reflect.Struct:
		for i := range src.NumField() {
			if field := dst.Field(i); field.CanSet() {
				copyInto(field, src.Field(i))
			}
		}
	case reflect.Map:
		if src.IsNil() {
			return
		}
		target := reflect.MakeMapWithSize(src.Type(), src.Len())
		entries := src.MapRange()
		for entries.Next() {
			entry := reflect.New(src.Type().Elem()).Elem()
			copyInto(entry, entries.Value())
			target.SetMapIndex(entries.Key(), entry)
		}
		dst.Set(target)
	case reflect.Slice:
		if src.IsNil() {
			return
		}
		target := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			copyInto(target.Index(i), src.Index(i))
		}
		dst.Set(target)
	case reflect.Array:
		for i := range src.Len() {
			copyInto(dst.Index(i), src.Index(i))
		}
	default:
		dst.Set(src)
	}
}
