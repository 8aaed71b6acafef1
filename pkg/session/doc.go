// Package session defines the persistence-facing contract the defaults
// persister writes through, plus two reference implementations.
//
// Responsibilities:
//   - Store only gets/sets/deletes a single Values snapshot per state key.
//   - A Store instance is scoped to one user session; the persister never
//     sees session identifiers, only state keys.
//   - Meta.SnapshotID/UpdatedAt are storage-owned provenance; stores fill
//     them on Set when the caller leaves them zero.
//
// Data flow:
//
//	defaults.Persister -> Store.Get/Set/Delete -> backend (memory, Redis)
//
// Consumers with their own session machinery implement Store over it; the
// core defaults package stays persistence-agnostic.
package session
