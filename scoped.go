package statereg

// Scope fixes the group a ScopedState addresses at compile time.
type Scope interface {
	Group() Group
}

// AppScope addresses GroupApp.
type AppScope struct{}

// Group implements Scope.
func (AppScope) Group() Group { return GroupApp }

// ProjectScope addresses GroupProject.
type ProjectScope struct{}

// Group implements Scope.
func (ProjectScope) Group() Group { return GroupProject }

// ScopedState is a handle bound to a state type and a scope, so call sites
// cannot pair it with the wrong group or type. The zero value is invalid.
type ScopedState[T any, S Scope] struct {
	id    Handle
	valid bool
}

// AppState is a handle to application-lifetime state.
type AppState[T any] = ScopedState[T, AppScope]

// ProjectState is a handle to state tied to the open document.
type ProjectState[T any] = ScopedState[T, ProjectScope]

// RegisterScoped registers T under name in S's group.
func RegisterScoped[T any, S Scope](m *Manager, name string, opts ...SlotOption[T]) ScopedState[T, S] {
	var scope S
	return ScopedState[T, S]{
		id:    Register[T](m, scope.Group(), name, opts...),
		valid: true,
	}
}

// RegisterApp registers T under name in GroupApp.
func RegisterApp[T any](m *Manager, name string, opts ...SlotOption[T]) AppState[T] {
	return RegisterScoped[T, AppScope](m, name, opts...)
}

// RegisterProject registers T under name in GroupProject.
func RegisterProject[T any](m *Manager, name string, opts ...SlotOption[T]) ProjectState[T] {
	return RegisterScoped[T, ProjectScope](m, name, opts...)
}

// Get returns the live value. Using a zero ScopedState panics.
func (s ScopedState[T, S]) Get(m *Manager) *T {
	return Get[T](m, s.Group(), s.Handle())
}

// Peek returns a deep copy of the value.
func (s ScopedState[T, S]) Peek(m *Manager) T {
	return Peek[T](m, s.Group(), s.Handle())
}

// Handle returns the underlying handle, or InvalidHandle for the zero value.
func (s ScopedState[T, S]) Handle() Handle {
	if !s.valid {
		return InvalidHandle
	}
	return s.id
}

// Group returns the group fixed by S.
func (s ScopedState[T, S]) Group() Group {
	var scope S
	return scope.Group()
}

// Valid reports whether s was produced by a registration.
func (s ScopedState[T, S]) Valid() bool {
	return s.valid
}
