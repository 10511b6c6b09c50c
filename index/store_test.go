package index_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/recordstore/common/errors"
	"github.com/turtacn/recordstore/index"
	"github.com/turtacn/recordstore/keys"
	"github.com/turtacn/recordstore/kvstore"
	"github.com/turtacn/recordstore/kvstore/badgerstore"
	"github.com/turtacn/recordstore/kvstore/boltstore"
	"github.com/turtacn/recordstore/kvstore/memory"
	"github.com/turtacn/recordstore/serial"
)

type user struct {
	ID       uint64 `ser:"u64"`
	Email    string `ser:"charptr"`
	Username string `ser:"charptr"`
	Age      uint8  `ser:"u8"`
	Balance  uint64 `ser:"u64"`
}

func newUserStore(t *testing.T) *index.Store[user] {
	t.Helper()
	schema, err := serial.BuildSchema(&user{}, serial.Hooks{})
	require.NoError(t, err)
	pk, err := keys.NewKeySchema("pk", schema, "ID")
	require.NoError(t, err)
	byEmail, err := keys.NewKeySchema("by_email", schema, "Email")
	require.NoError(t, err)
	return index.NewStore[user]("user", schema, pk, byEmail)
}

// backends returns one open kvstore.Handle per implementation, named for
// sub-test reporting, so every scenario below runs against all three.
func backends(t *testing.T) map[string]kvstore.Handle {
	t.Helper()
	bolt, err := boltstore.Open(filepath.Join(t.TempDir(), "store.bolt"))
	require.NoError(t, err)
	badger, err := badgerstore.Open(t.TempDir())
	require.NoError(t, err)
	return map[string]kvstore.Handle{
		"memory": memory.New(),
		"bolt":   bolt,
		"badger": badger,
	}
}

func TestUserPutGetUpdateEmail(t *testing.T) {
	ctx := context.Background()
	for name, h := range backends(t) {
		h := h
		t.Run(name, func(t *testing.T) {
			defer h.Close()
			store := newUserStore(t)

			txn, err := h.Begin(ctx, true)
			require.NoError(t, err)

			u := &user{ID: 1002, Email: "bob@example.com", Username: "bob", Age: 25, Balance: 50000}
			require.NoError(t, store.Put(ctx, txn, u, nil))
			require.NoError(t, txn.Commit())

			// Scenario: lookup by the original secondary key succeeds.
			rtxn, err := h.Begin(ctx, false)
			require.NoError(t, err)
			got, snap, err := store.GetBySecondary(ctx, rtxn, "by_email", &user{Email: "bob@example.com"}, true)
			require.NoError(t, err)
			assert.Equal(t, u.Username, got.Username)
			require.NoError(t, rtxn.Commit())

			// Update email; pass the snapshot so the stale secondary entry is cleaned up.
			updated := *got
			updated.Email = "bob_new@example.com"
			wtxn, err := h.Begin(ctx, true)
			require.NoError(t, err)
			require.NoError(t, store.Put(ctx, wtxn, &updated, snap))
			require.NoError(t, wtxn.Commit())

			// Old secondary entry must be gone.
			rtxn2, err := h.Begin(ctx, false)
			require.NoError(t, err)
			_, _, err = store.GetBySecondary(ctx, rtxn2, "by_email", &user{Email: "bob@example.com"}, false)
			assert.ErrorIs(t, err, errors.ErrNotFound)

			// New secondary entry resolves to the same primary key / updated record.
			got2, _, err := store.GetBySecondary(ctx, rtxn2, "by_email", &user{Email: "bob_new@example.com"}, false)
			require.NoError(t, err)
			assert.Equal(t, uint64(1002), got2.ID)
			assert.Equal(t, "bob_new@example.com", got2.Email)
		})
	}
}

func TestDeleteCascadesSecondaryIndex(t *testing.T) {
	ctx := context.Background()
	for name, h := range backends(t) {
		h := h
		t.Run(name, func(t *testing.T) {
			defer h.Close()
			store := newUserStore(t)

			txn, err := h.Begin(ctx, true)
			require.NoError(t, err)
			u := &user{ID: 7, Email: "carol@example.com", Username: "carol", Age: 30, Balance: 10}
			require.NoError(t, store.Put(ctx, txn, u, nil))
			require.NoError(t, txn.Commit())

			wtxn, err := h.Begin(ctx, true)
			require.NoError(t, err)
			require.NoError(t, store.Del(ctx, wtxn, &user{ID: 7}))
			require.NoError(t, wtxn.Commit())

			rtxn, err := h.Begin(ctx, false)
			require.NoError(t, err)
			_, _, err = store.Get(ctx, rtxn, &user{ID: 7}, false)
			assert.ErrorIs(t, err, errors.ErrNotFound)
			_, err = store.LookupBySecondary(ctx, rtxn, "by_email", &user{Email: "carol@example.com"})
			assert.ErrorIs(t, err, errors.ErrNotFound)
		})
	}
}

type message struct {
	MailboxID uint64          `ser:"u64"`
	UID       uint64          `ser:"u64"`
	Received  serial.Timespec `ser:"timespec"`
}

func newMessageStore(t *testing.T) *index.Store[message] {
	t.Helper()
	schema, err := serial.BuildSchema(&message{}, serial.Hooks{})
	require.NoError(t, err)
	pk, err := keys.NewKeySchema("pk", schema, "MailboxID", "UID")
	require.NoError(t, err)
	byTime, err := keys.NewKeySchema("by_mailbox_time", schema, "MailboxID", "Received")
	require.NoError(t, err)
	return index.NewStore[message]("message", schema, pk, byTime)
}

func TestCompositePrimaryKeyDistinctness(t *testing.T) {
	ctx := context.Background()
	for name, h := range backends(t) {
		h := h
		t.Run(name, func(t *testing.T) {
			defer h.Close()
			store := newMessageStore(t)

			txn, err := h.Begin(ctx, true)
			require.NoError(t, err)
			require.NoError(t, store.Put(ctx, txn, &message{MailboxID: 2, UID: 203, Received: serial.Timespec{Sec: 1700001000}}, nil))
			require.NoError(t, txn.Commit())

			rtxn, err := h.Begin(ctx, false)
			require.NoError(t, err)
			got, _, err := store.Get(ctx, rtxn, &message{MailboxID: 2, UID: 203}, false)
			require.NoError(t, err)
			assert.Equal(t, int64(1700001000), got.Received.Sec)

			_, _, err = store.Get(ctx, rtxn, &message{MailboxID: 2, UID: 204}, false)
			assert.ErrorIs(t, err, errors.ErrNotFound)
		})
	}
}

func TestSecondaryIndexCursorOrdersByTime(t *testing.T) {
	ctx := context.Background()
	for name, h := range backends(t) {
		h := h
		t.Run(name, func(t *testing.T) {
			defer h.Close()
			store := newMessageStore(t)

			txn, err := h.Begin(ctx, true)
			require.NoError(t, err)
			secs := []int64{1700001200, 1700001000, 1700001300, 1700001100}
			for i, sec := range secs {
				msg := &message{MailboxID: 2, UID: uint64(i + 1), Received: serial.Timespec{Sec: sec}}
				require.NoError(t, store.Put(ctx, txn, msg, nil))
			}
			require.NoError(t, txn.Commit())

			rtxn, err := h.Begin(ctx, false)
			require.NoError(t, err)
			cur, err := store.CursorSecondary(ctx, rtxn, "by_mailbox_time", nil)
			require.NoError(t, err)
			defer cur.Close()

			var order []uint64
			for cur.Next() {
				pk := cur.Value()
				var pkRec message
				// primary key decode: only needs MailboxID/UID fields, decoded via schema against pk bytes directly
				// is out of scope here; instead re-Get by resolving the raw pk bytes through the pk table.
				val, err := rtxn.Get(ctx, "message_pk", pk)
				require.NoError(t, err)
				n, err := store.DecodeValue(val)
				require.NoError(t, err)
				pkRec = *n
				order = append(order, pkRec.UID)
			}
			assert.Equal(t, []uint64{2, 4, 1, 3}, order)
		})
	}
}
