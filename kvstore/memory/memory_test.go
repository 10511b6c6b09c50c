package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/kvstore/memory"
)

func TestPutGetDel(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	txn, err := b.Begin(ctx, true)
	require.NoError(t, err)

	require.NoError(t, txn.Put(ctx, "t", []byte("a"), []byte("1")))
	require.NoError(t, txn.Put(ctx, "t", []byte("b"), []byte("2")))

	v, err := txn.Get(ctx, "t", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	require.NoError(t, txn.Del(ctx, "t", []byte("a")))
	_, err = txn.Get(ctx, "t", []byte("a"))
	assert.ErrorIs(t, err, errors.ErrNotFound)

	require.NoError(t, txn.Commit())
}

func TestCursorOrdering(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	txn, err := b.Begin(ctx, true)
	require.NoError(t, err)

	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, txn.Put(ctx, "t", []byte(k), []byte(k)))
	}

	cur, err := txn.Cursor(ctx, "t", nil)
	require.NoError(t, err)
	defer cur.Close()

	var got []string
	for cur.Next() {
		got = append(got, string(cur.Key()))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestCursorStart(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	txn, err := b.Begin(ctx, true)
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c", "d"} {
		require.NoError(t, txn.Put(ctx, "t", []byte(k), []byte(k)))
	}

	cur, err := txn.Cursor(ctx, "t", []byte("b"))
	require.NoError(t, err)
	defer cur.Close()

	var got []string
	for cur.Next() {
		got = append(got, string(cur.Key()))
	}
	assert.Equal(t, []string{"b", "c", "d"}, got)
}

// TestAbortIsNoOp documents the in-memory backend's caveat: writes are
// visible immediately and Abort does not roll them back.
func TestAbortIsNoOp(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	txn, err := b.Begin(ctx, true)
	require.NoError(t, err)

	require.NoError(t, txn.Put(ctx, "t", []byte("a"), []byte("1")))
	require.NoError(t, txn.Abort())

	txn2, err := b.Begin(ctx, false)
	require.NoError(t, err)
	v, err := txn2.Get(ctx, "t", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	txn, err := b.Begin(ctx, false)
	require.NoError(t, err)

	err = txn.Put(ctx, "t", []byte("a"), []byte("1"))
	assert.Error(t, err)
}
