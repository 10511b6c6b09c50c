// Package index implements the indexed-record layer: given a record's
// schema, primary key, and secondary keys, it keeps the primary table and
// every secondary index table consistent across puts, gets, and deletes
// within one kvstore.Txn. This is the Go analogue of the source's
// SERIALISE_PRIMARY_KEY / SERIALISE_SECONDARY_KEY-generated put/get/del/
// lookup/cursor functions, generalized from per-record-type macro
// expansion into one generic Store[R] parameterized on the record type.
package index

import (
	"bytes"
	"context"
	"time"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/keys"
	"github.com/turtacn/recordstore/kvstore"
	"github.com/turtacn/recordstore/observability/metrics"
	"github.com/turtacn/recordstore/observability/tracing"
	"github.com/turtacn/recordstore/serial"
)

// Snapshot captures a record's primary and secondary key bytes as they
// were at the time it was read, so a later Put can tell which index
// entries changed. This replaces the source's length-prefixed
// kvstore_key_buf_t byte buffer with a typed struct, per the design
// notes: Go has no macro system to parse an opaque buffer back apart,
// and there is no reason to pay for one.
type Snapshot struct {
	PK []byte
	SK map[string][]byte // secondary key name -> encoded bytes
}

// Store is a generic indexed-record store over record type R. One Store
// instance is built per record type and reused across transactions; all
// state it holds (schemas) is immutable after construction, so it is
// safe for concurrent use by callers operating on different kvstore.Txn
// values.
type Store[R any] struct {
	recordName string
	schema     *serial.RecordSchema
	pk         *keys.KeySchema
	secondary  []*keys.KeySchema
}

// NewStore builds a Store for recordName using schema as the record's
// wire encoding, pk as its primary key schema, and secondary as its
// (possibly empty) list of secondary key schemas.
func NewStore[R any](recordName string, schema *serial.RecordSchema, pk *keys.KeySchema, secondary ...*keys.KeySchema) *Store[R] {
	return &Store[R]{recordName: recordName, schema: schema, pk: pk, secondary: secondary}
}

func (s *Store[R]) pkTable() string { return s.pk.TableName(s.recordName) }

func (s *Store[R]) skTable(sk *keys.KeySchema) string { return sk.TableName(s.recordName) }

// snapshotOf extracts the primary and every secondary key from rec,
// without touching the backend — used both to build the Snapshot handed
// back from Get and to compute new-vs-prior key bytes inside Put.
func (s *Store[R]) snapshotOf(rec *R) (Snapshot, error) {
	pkBytes, err := s.pk.Extract(rec)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{PK: pkBytes, SK: make(map[string][]byte, len(s.secondary))}
	for _, sk := range s.secondary {
		skBytes, err := sk.Extract(rec)
		if err != nil {
			return Snapshot{}, err
		}
		snap.SK[sk.Name] = skBytes
	}
	return snap, nil
}

// Put stores rec, replacing any record at its primary key. If prior is
// non-nil (the caller previously read the record it is now overwriting),
// stale primary/secondary index entries that changed are deleted first —
// steps 3a-3c of the put algorithm. If prior is nil, Put behaves as an
// insert: no prior entries are cleaned up, which can orphan secondary
// entries if the caller is in fact overwriting a live record under the
// same primary key without having read it first.
func (s *Store[R]) Put(ctx context.Context, txn kvstore.Txn, rec *R, prior *Snapshot) (err error) {
	span, _ := tracing.StartSpan(ctx, "index.Put")
	start := time.Now()
	defer func() {
		tracing.Finish(span, err)
		metrics.RecordOperation("put", time.Since(start), err)
	}()

	newSnap, err := s.snapshotOf(rec)
	if err != nil {
		return err
	}

	if prior != nil {
		if !bytes.Equal(prior.PK, newSnap.PK) {
			if err := txn.Del(ctx, s.pkTable(), prior.PK); err != nil {
				return err
			}
		}
		for _, sk := range s.secondary {
			prevBytes, hadPrev := prior.SK[sk.Name]
			newBytes := newSnap.SK[sk.Name]
			if hadPrev && !bytes.Equal(prevBytes, newBytes) {
				if err := txn.Del(ctx, s.skTable(sk), prevBytes); err != nil {
					return err
				}
			}
		}
	}

	valueBytes, err := s.schema.Encode(rec)
	if err != nil {
		return err
	}
	if err := txn.Put(ctx, s.pkTable(), newSnap.PK, valueBytes); err != nil {
		return err
	}

	for _, sk := range s.secondary {
		if err := txn.Put(ctx, s.skTable(sk), newSnap.SK[sk.Name], newSnap.PK); err != nil {
			return err
		}
	}
	return nil
}

// Get fetches the record stored under the primary key extracted from
// pkRec (a value carrying only the primary key fields populated, or a
// full record — only the PK fields are read). If captureSnapshot is
// true, the returned Snapshot can be passed as Put's prior argument for
// a subsequent update.
func (s *Store[R]) Get(ctx context.Context, txn kvstore.Txn, pkRec *R, captureSnapshot bool) (_ *R, _ *Snapshot, err error) {
	span, _ := tracing.StartSpan(ctx, "index.Get")
	start := time.Now()
	defer func() {
		tracing.Finish(span, err)
		metrics.RecordOperation("get", time.Since(start), err)
	}()

	pkBytes, err := s.pk.Extract(pkRec)
	if err != nil {
		return nil, nil, err
	}

	raw, err := txn.Get(ctx, s.pkTable(), pkBytes)
	if err != nil {
		return nil, nil, err
	}

	var out R
	if _, err := s.schema.Decode(raw, &out); err != nil {
		return nil, nil, err
	}

	if !captureSnapshot {
		return &out, nil, nil
	}
	snap, err := s.snapshotOf(&out)
	if err != nil {
		return nil, nil, err
	}
	return &out, &snap, nil
}

// Del removes the record at the primary key extracted from pkRec,
// cascading through every secondary index entry the record currently
// has (resolving the source's documented open question in favor of
// cascade-on-delete, so callers never need a separate read-then-del step
// to avoid orphaned index entries).
func (s *Store[R]) Del(ctx context.Context, txn kvstore.Txn, pkRec *R) (err error) {
	span, ctx := tracing.StartSpan(ctx, "index.Del")
	start := time.Now()
	defer func() {
		tracing.Finish(span, err)
		metrics.RecordOperation("del", time.Since(start), err)
	}()

	_, snap, err := s.Get(ctx, txn, pkRec, true)
	if err != nil {
		return err
	}

	for _, sk := range s.secondary {
		if err := txn.Del(ctx, s.skTable(sk), snap.SK[sk.Name]); err != nil {
			return err
		}
	}
	return txn.Del(ctx, s.pkTable(), snap.PK)
}

// LookupBySecondary resolves a secondary key (extracted from skRec, which
// need only have that key's fields populated) to the primary key bytes of
// the record that currently owns it.
func (s *Store[R]) LookupBySecondary(ctx context.Context, txn kvstore.Txn, secondaryName string, skRec *R) (_ []byte, err error) {
	span, _ := tracing.StartSpan(ctx, "index.LookupBySecondary")
	start := time.Now()
	defer func() {
		tracing.Finish(span, err)
		metrics.RecordOperation("lookup_secondary", time.Since(start), err)
	}()

	sk, err := s.secondaryByName(secondaryName)
	if err != nil {
		return nil, err
	}
	skBytes, err := sk.Extract(skRec)
	if err != nil {
		return nil, err
	}
	return txn.Get(ctx, s.skTable(sk), skBytes)
}

// GetBySecondary is a convenience composing LookupBySecondary and Get: it
// resolves skRec's secondary key to a primary key, then fetches and
// decodes the record.
func (s *Store[R]) GetBySecondary(ctx context.Context, txn kvstore.Txn, secondaryName string, skRec *R, captureSnapshot bool) (*R, *Snapshot, error) {
	pkBytes, err := s.LookupBySecondary(ctx, txn, secondaryName, skRec)
	if err != nil {
		return nil, nil, err
	}
	raw, err := txn.Get(ctx, s.pkTable(), pkBytes)
	if err != nil {
		return nil, nil, err
	}
	var out R
	if _, err := s.schema.Decode(raw, &out); err != nil {
		return nil, nil, err
	}
	if !captureSnapshot {
		return &out, nil, nil
	}
	snap, err := s.snapshotOf(&out)
	if err != nil {
		return nil, nil, err
	}
	return &out, &snap, nil
}

// CursorPK opens a cursor over the primary table. Values yielded are
// raw encoded records; decode with the Store's schema or DecodeValue.
func (s *Store[R]) CursorPK(ctx context.Context, txn kvstore.Txn, start []byte) (kvstore.Cursor, error) {
	return txn.Cursor(ctx, s.pkTable(), start)
}

// CursorSecondary opens a cursor over the named secondary index table.
// Values yielded are raw primary key bytes.
func (s *Store[R]) CursorSecondary(ctx context.Context, txn kvstore.Txn, secondaryName string, start []byte) (kvstore.Cursor, error) {
	sk, err := s.secondaryByName(secondaryName)
	if err != nil {
		return nil, err
	}
	return txn.Cursor(ctx, s.skTable(sk), start)
}

// DecodeValue decodes a raw primary-table value (as yielded by CursorPK)
// into a record.
func (s *Store[R]) DecodeValue(raw []byte) (*R, error) {
	var out R
	if _, err := s.schema.Decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store[R]) secondaryByName(name string) (*keys.KeySchema, error) {
	for _, sk := range s.secondary {
		if sk.Name == name {
			return sk, nil
		}
	}
	return nil, errors.ErrSchemaInvalid.New("no such secondary key " + name)
}
