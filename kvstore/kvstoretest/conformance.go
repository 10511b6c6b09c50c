// Package kvstoretest provides a shared conformance suite for
// kvstore.Handle implementations, run by boltstore and badgerstore so both
// are exercised by one set of assertions instead of two copies of the same
// test. The memory backend is not run against it: its Abort does not roll
// back, which AbortDiscardsWrites checks; it has its own tests instead.
package kvstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/kvstore"
)

// Conformance runs the shared backend test suite against a freshly
// opened Handle returned by open(). open is called once per sub-test so
// backends that need a fresh file/directory per run can allocate one.
func Conformance(t *testing.T, open func(t *testing.T) kvstore.Handle) {
	t.Run("PutGetDel", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, true)
		require.NoError(t, err)
		require.NoError(t, txn.Put(ctx, "t", []byte("k1"), []byte("v1")))
		require.NoError(t, txn.Commit())

		txn2, err := h.Begin(ctx, false)
		require.NoError(t, err)
		v, err := txn2.Get(ctx, "t", []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)
		require.NoError(t, txn2.Commit())

		txn3, err := h.Begin(ctx, true)
		require.NoError(t, err)
		require.NoError(t, txn3.Del(ctx, "t", []byte("k1")))
		require.NoError(t, txn3.Commit())

		txn4, err := h.Begin(ctx, false)
		require.NoError(t, err)
		_, err = txn4.Get(ctx, "t", []byte("k1"))
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, false)
		require.NoError(t, err)
		_, err = txn.Get(ctx, "missing_table", []byte("nope"))
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("CursorOrdering", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, true)
		require.NoError(t, err)
		for _, k := range []string{"c", "a", "d", "b"} {
			require.NoError(t, txn.Put(ctx, "ordered", []byte(k), []byte(k)))
		}
		require.NoError(t, txn.Commit())

		rtxn, err := h.Begin(ctx, false)
		require.NoError(t, err)
		cur, err := rtxn.Cursor(ctx, "ordered", nil)
		require.NoError(t, err)
		defer cur.Close()

		var got []string
		for cur.Next() {
			got = append(got, string(cur.Key()))
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, got)
	})

	t.Run("CursorStartPosition", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, true)
		require.NoError(t, err)
		for _, k := range []string{"a", "b", "c", "d"} {
			require.NoError(t, txn.Put(ctx, "ordered2", []byte(k), []byte(k)))
		}
		require.NoError(t, txn.Commit())

		rtxn, err := h.Begin(ctx, false)
		require.NoError(t, err)
		cur, err := rtxn.Cursor(ctx, "ordered2", []byte("c"))
		require.NoError(t, err)
		defer cur.Close()

		var got []string
		for cur.Next() {
			got = append(got, string(cur.Key()))
		}
		assert.Equal(t, []string{"c", "d"}, got)
	})

	t.Run("AbortDiscardsWrites", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, true)
		require.NoError(t, err)
		require.NoError(t, txn.Put(ctx, "t2", []byte("k"), []byte("v")))
		require.NoError(t, txn.Abort())

		rtxn, err := h.Begin(ctx, false)
		require.NoError(t, err)
		_, err = rtxn.Get(ctx, "t2", []byte("k"))
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("PutOverwritesExisting", func(t *testing.T) {
		ctx := context.Background()
		h := open(t)
		defer h.Close()

		txn, err := h.Begin(ctx, true)
		require.NoError(t, err)
		require.NoError(t, txn.Put(ctx, "t3", []byte("k"), []byte("v1")))
		require.NoError(t, txn.Put(ctx, "t3", []byte("k"), []byte("v2")))
		require.NoError(t, txn.Commit())

		rtxn, err := h.Begin(ctx, false)
		require.NoError(t, err)
		v, err := rtxn.Get(ctx, "t3", []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)
	})
}
