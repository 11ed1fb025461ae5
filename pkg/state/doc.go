// Package state persists per-mesh palette documents outside the host.
//
// Store[T] loads and saves one snapshot for one Ref. Resolver[T] wraps a
// store with defaults for missing snapshots and an optimistic Mutate that
// validates the edited snapshot before saving it.
//
// Three stores are provided:
//
//	MemoryStore   tests and examples
//	FileStore     one JSON file per Ref under a root directory
//	SQLiteStore   one row per Ref in a sqlite database (modernc.org/sqlite)
//
// Keys:
//
//	Ref.Identifier() returns "<domain>/<mesh>" and rejects incomplete refs.
//	Stores validate every ref with it; SQLiteStore uses it as primary key.
//	Stores implementing Lister enumerate the meshes of a domain.
//
// Concurrency:
//
//	Stores persist the Meta they are given. Resolver.Mutate stamps a fresh
//	SnapshotID and ETag on every save and rejects a caller ETag that does
//	not match the stored one with ErrETagMismatch.
package state
