// Package memory implements kvstore.Handle as a set of sorted in-process
// slices, one per table — the reference backend against which the other
// kvstore implementations are tested. Grounded on the source's design
// intent (a "toy" backend suitable for tests and documentation) rather
// than on any single teacher file, since the source defines the contract
// but ships no in-memory reference implementation of its own.
//
// Transactions here are NOT isolated and Abort is a documented no-op:
// writes apply to the shared table slices immediately, and there is no
// undo log. This is acceptable for a reference/test backend but must
// never be mistaken for a concurrency-safe or rollback-capable store;
// callers needing either should use boltstore or badgerstore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/kvstore"
)

type entry struct {
	key   []byte
	value []byte
}

// Backend is an in-memory kvstore.Handle. The zero value is not usable;
// construct with New.
type Backend struct {
	mu     sync.RWMutex
	tables map[string][]entry
}

// New returns an empty in-memory backend.
func New() *Backend {
	return &Backend{tables: make(map[string][]entry)}
}

// Begin returns a new transaction. Writable and read-only transactions
// behave identically except that Commit/Abort on a read-only transaction
// never observes writes, since none are permitted.
func (b *Backend) Begin(ctx context.Context, writable bool) (kvstore.Txn, error) {
	return &txn{backend: b, writable: writable}, nil
}

// Close is a no-op; the in-memory backend holds no external resources.
func (b *Backend) Close() error { return nil }

// Stats reports the combined size of every key and value currently held,
// for the observability/metrics storage collector. There is no on-disk
// footprint to report since this backend never persists anything.
func (b *Backend) Stats() (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total int64
	for _, rows := range b.tables {
		for _, e := range rows {
			total += int64(len(e.key) + len(e.value))
		}
	}
	return total, nil
}

func (b *Backend) find(table string, key []byte) (int, bool) {
	rows := b.tables[table]
	idx := sort.Search(len(rows), func(i int) bool {
		return compareBytes(rows[i].key, key) >= 0
	})
	if idx < len(rows) && compareBytes(rows[idx].key, key) == 0 {
		return idx, true
	}
	return idx, false
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

type txn struct {
	backend  *Backend
	writable bool
	done     bool
}

func (t *txn) Put(ctx context.Context, table string, key, value []byte) error {
	if !t.writable {
		return errors.ErrIoError
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	idx, found := t.backend.find(table, k)
	rows := t.backend.tables[table]
	if found {
		rows[idx].value = v
		return nil
	}
	rows = append(rows, entry{})
	copy(rows[idx+1:], rows[idx:])
	rows[idx] = entry{key: k, value: v}
	t.backend.tables[table] = rows
	return nil
}

func (t *txn) Get(ctx context.Context, table string, key []byte) ([]byte, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	idx, found := t.backend.find(table, key)
	if !found {
		return nil, errors.ErrNotFound
	}
	return append([]byte(nil), t.backend.tables[table][idx].value...), nil
}

func (t *txn) Del(ctx context.Context, table string, key []byte) error {
	if !t.writable {
		return errors.ErrIoError
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	idx, found := t.backend.find(table, key)
	if !found {
		return nil
	}
	rows := t.backend.tables[table]
	t.backend.tables[table] = append(rows[:idx], rows[idx+1:]...)
	return nil
}

func (t *txn) Cursor(ctx context.Context, table string, start []byte) (kvstore.Cursor, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	rows := t.backend.tables[table]
	snapshot := make([]entry, len(rows))
	copy(snapshot, rows)

	idx := 0
	if start != nil {
		idx = sort.Search(len(snapshot), func(i int) bool {
			return compareBytes(snapshot[i].key, start) >= 0
		})
	}
	return &cursor{rows: snapshot, idx: idx - 1}, nil
}

// Commit is a no-op: writes already applied to the backend's tables as
// they were made. Documented, not a bug — see the package doc.
func (t *txn) Commit() error {
	t.done = true
	return nil
}

// Abort is a no-op for the same reason Commit is: there is no undo log.
func (t *txn) Abort() error {
	t.done = true
	return nil
}

type cursor struct {
	rows []entry
	idx  int // points at current entry; starts one before the first valid position
}

func (c *cursor) Valid() bool { return c.idx >= 0 && c.idx < len(c.rows) }

func (c *cursor) Next() bool {
	c.idx++
	return c.Valid()
}

func (c *cursor) Key() []byte {
	if !c.Valid() {
		return nil
	}
	return c.rows[c.idx].key
}

func (c *cursor) Value() []byte {
	if !c.Valid() {
		return nil
	}
	return c.rows[c.idx].value
}

func (c *cursor) Close() error { return nil }
