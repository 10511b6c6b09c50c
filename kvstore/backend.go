// Package kvstore defines the backend contract every storage engine
// plugged into the index package must satisfy: named ordered tables,
// transactions, and forward cursors. This is the Go analogue of the
// source's kvstore_backend.h — the same three-way split (handle,
// transaction, cursor) and the same four-outcome result space
// (ok/not-found/exists/error), expressed as interfaces and sentinel
// errors instead of a vtable of function pointers and an int return code.
package kvstore

import "context"

// Handle is an open storage engine. A Handle outlives any number of
// transactions; callers obtain a Txn via Begin for every unit of work.
type Handle interface {
	// Begin starts a new transaction. A writable transaction may Put/Del;
	// a read-only transaction returns an error from those calls.
	Begin(ctx context.Context, writable bool) (Txn, error)

	// Close releases all resources held by the backend. No further
	// transactions may be started afterward.
	Close() error
}

// Txn is a single unit of work against one or more named tables. All
// operations within a Txn see a consistent view of data and are not
// visible to other transactions until Commit succeeds.
type Txn interface {
	// Put stores value under key in table, creating table on first use.
	// An existing value at key is overwritten (upsert semantics).
	Put(ctx context.Context, table string, key, value []byte) error

	// Get returns the value stored under key in table, or ErrNotFound if
	// no such key exists in table.
	Get(ctx context.Context, table string, key []byte) ([]byte, error)

	// Del removes key from table. Deleting an absent key is not an error.
	Del(ctx context.Context, table string, key []byte) error

	// Cursor opens a forward cursor over table, positioned at the first
	// key greater than or equal to start. A nil start positions at the
	// first key in the table.
	Cursor(ctx context.Context, table string, start []byte) (Cursor, error)

	// Commit applies the transaction's writes. A read-only transaction's
	// Commit is a no-op that always succeeds.
	Commit() error

	// Abort discards the transaction's writes. Calling Abort after
	// Commit, or Commit after Abort, is a programming error.
	Abort() error
}

// Cursor iterates a table's entries in ascending key order, starting
// from the position given to Txn.Cursor.
type Cursor interface {
	// Valid reports whether the cursor is positioned at an entry.
	Valid() bool

	// Next advances the cursor and reports whether a next entry exists.
	Next() bool

	// Key returns the current entry's key. Only valid while Valid().
	Key() []byte

	// Value returns the current entry's value. Only valid while Valid().
	Value() []byte

	// Close releases resources held by the cursor.
	Close() error
}
