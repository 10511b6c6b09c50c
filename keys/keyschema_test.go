package keys_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/recordstore/keys"
	"github.com/turtacn/recordstore/serial"
)

type message struct {
	MailboxID uint64          `ser:"u64"`
	UID       uint64          `ser:"u64"`
	Received  serial.Timespec `ser:"timespec"`
	Subject   string          `ser:"charptr"`
}

func TestCompositePrimaryKeyOrdering(t *testing.T) {
	schema, err := serial.BuildSchema(&message{}, serial.Hooks{})
	require.NoError(t, err)

	pk, err := keys.NewKeySchema("pk", schema, "MailboxID", "UID")
	require.NoError(t, err)

	a := &message{MailboxID: 2, UID: 203, Subject: "a"}
	b := &message{MailboxID: 2, UID: 204, Subject: "b"}

	ka, err := pk.Extract(a)
	require.NoError(t, err)
	kb, err := pk.Extract(b)
	require.NoError(t, err)

	assert.True(t, bytes.Compare(ka, kb) < 0)
	assert.Equal(t, "message_pk", pk.TableName("message"))
}

func TestSecondaryKeyOverTimespec(t *testing.T) {
	schema, err := serial.BuildSchema(&message{}, serial.Hooks{})
	require.NoError(t, err)

	sk, err := keys.NewKeySchema("by_mailbox_time", schema, "MailboxID", "Received")
	require.NoError(t, err)

	earlier := &message{MailboxID: 2, Received: serial.Timespec{Sec: 1700001000}}
	later := &message{MailboxID: 2, Received: serial.Timespec{Sec: 1700001300}}

	ke, err := sk.Extract(earlier)
	require.NoError(t, err)
	kl, err := sk.Extract(later)
	require.NoError(t, err)
	assert.True(t, bytes.Compare(ke, kl) < 0)
}

func TestUnknownFieldErrors(t *testing.T) {
	schema, err := serial.BuildSchema(&message{}, serial.Hooks{})
	require.NoError(t, err)

	_, err = keys.NewKeySchema("bad", schema, "DoesNotExist")
	assert.Error(t, err)
}
