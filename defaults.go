package statereg

// Defaulter is implemented by state types whose default value is not the Go
// zero value. SetDefaults is called on a freshly zeroed value every time the
// registry default-constructs the type: on registration, before each overlay
// during deserialization, and on clear.
type Defaulter interface {
	SetDefaults()
}

func newDefault[T any]() T {
	var value T
	if d, ok := any(&value).(Defaulter); ok {
		d.SetDefaults()
	}
	return value
}
