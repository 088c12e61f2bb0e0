// Package artifact contains concrete implementations of the core.ArtifactStore.
//
// The canonical ArtifactStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Two backends ship
// here: InMemoryStore for tests and throwaway runs, and FileStore for
// artifacts that should survive a restart.
//
// Only lightweight implementation specific types should live here. Callers
// should depend on the core interface rather than concrete types so they can
// substitute alternative persistence layers in tests or production.
package artifact
