// Package badgerstore implements kvstore.Handle on top of BadgerDB.
// Grounded on the teacher's storage/engines/badger package for the shape
// of opening a database (DefaultOptions + sync writes) and namespacing
// keys by prefix when a single physical store backs multiple logical
// tables, generalized here away from that package's SQL-catalog coupling:
// a Badger key is simply "<table>\x00<key>", and transactions map
// directly onto badger.Txn, giving real commit/rollback semantics (unlike
// the memory backend).
package badgerstore

import (
	"bytes"
	"context"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/common/log"
	"github.com/turtacn/recordstore/kvstore"

	"go.uber.org/zap"
)

// Backend is a kvstore.Handle backed by a single BadgerDB database, with
// tables multiplexed into one keyspace by prefixing each key with its
// table name and a NUL separator.
type Backend struct {
	db *badger.DB
}

// Open opens (creating if absent) a Badger database at path.
func Open(path string) (*Backend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil).WithSyncWrites(false)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.ErrBackendOpenFailed.New(err)
	}
	log.GetLogger().Info("badgerstore: opened", zap.String("path", path))
	return &Backend{db: db}, nil
}

// Begin starts a Badger transaction.
func (b *Backend) Begin(ctx context.Context, writable bool) (kvstore.Txn, error) {
	return &txn{badgerTxn: b.db.NewTransaction(writable), writable: writable}, nil
}

// Close closes the underlying Badger database.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return errors.ErrBackendCloseFailed.New(err)
	}
	return nil
}

// Stats reports the database's on-disk footprint (LSM tree plus value
// log), for the observability/metrics storage collector.
func (b *Backend) Stats() (int64, error) {
	lsm, vlog := b.db.Size()
	return lsm + vlog, nil
}

func namespacedKey(table string, key []byte) []byte {
	buf := make([]byte, 0, len(table)+1+len(key))
	buf = append(buf, table...)
	buf = append(buf, 0)
	buf = append(buf, key...)
	return buf
}

type txn struct {
	badgerTxn *badger.Txn
	writable  bool
}

func (t *txn) Put(ctx context.Context, table string, key, value []byte) error {
	if !t.writable {
		return errors.ErrIoError
	}
	if err := t.badgerTxn.Set(namespacedKey(table, key), value); err != nil {
		return errors.ErrIoError
	}
	return nil
}

func (t *txn) Get(ctx context.Context, table string, key []byte) ([]byte, error) {
	item, err := t.badgerTxn.Get(namespacedKey(table, key))
	if err == badger.ErrKeyNotFound {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.ErrIoError
	}
	var out []byte
	err = item.Value(func(val []byte) error {
		out = append([]byte(nil), val...)
		return nil
	})
	if err != nil {
		return nil, errors.ErrIoError
	}
	return out, nil
}

func (t *txn) Del(ctx context.Context, table string, key []byte) error {
	if !t.writable {
		return errors.ErrIoError
	}
	if err := t.badgerTxn.Delete(namespacedKey(table, key)); err != nil && err != badger.ErrKeyNotFound {
		return errors.ErrIoError
	}
	return nil
}

func (t *txn) Cursor(ctx context.Context, table string, start []byte) (kvstore.Cursor, error) {
	prefix := append([]byte(table), 0)
	it := t.badgerTxn.NewIterator(badger.DefaultIteratorOptions)

	seekKey := prefix
	if start != nil {
		seekKey = namespacedKey(table, start)
	}
	return &cursor{it: it, prefix: prefix, seekKey: seekKey, started: false}, nil
}

func (t *txn) Commit() error {
	if err := t.badgerTxn.Commit(); err != nil {
		return errors.ErrTxnCommitFailed.New(err)
	}
	return nil
}

func (t *txn) Abort() error {
	t.badgerTxn.Discard()
	return nil
}

type cursor struct {
	it      *badger.Iterator
	prefix  []byte
	seekKey []byte
	started bool
}

func (c *cursor) Valid() bool {
	return c.started && c.it.ValidForPrefix(c.prefix)
}

func (c *cursor) Next() bool {
	if !c.started {
		c.started = true
		c.it.Seek(c.seekKey)
	} else {
		c.it.Next()
	}
	return c.Valid()
}

func (c *cursor) Key() []byte {
	if !c.Valid() {
		return nil
	}
	full := c.it.Item().KeyCopy(nil)
	return bytes.TrimPrefix(full, c.prefix)
}

func (c *cursor) Value() []byte {
	if !c.Valid() {
		return nil
	}
	val, err := c.it.Item().ValueCopy(nil)
	if err != nil {
		return nil
	}
	return val
}

func (c *cursor) Close() error {
	c.it.Close()
	return nil
}
