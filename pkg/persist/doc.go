// Package persist moves state group documents between a statereg.Manager and
// storage.
//
// The registry itself never touches files. A Store loads and saves one opaque
// document per Ref; a Session pairs a Store with a Manager and applies or
// captures whole groups; a Watcher reports external edits of a stored file so
// the owning goroutine can reload.
//
// Data flow:
//
//	Manager.SerializeGroup -> Session.Save -> Store.Save
//	Store.Load -> Session.Load -> Manager.DeserializeGroupReport
//
// Deterministic keys:
//
//	Ref.Identifier() returns `<group>/<key>`; FileStore maps it to
//	`<root>/<group>/<key>.json` with metadata in a `.meta.json` sidecar.
package persist
