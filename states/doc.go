// Package states is the catalog of editor state types and the startup routine
// that registers them.
//
// Every type carries the name it is persisted under and its default values.
// RegisterAll registers the whole catalog on a Manager in one place, before
// any document is loaded.
package states
