package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	RecordOperation("put", 1*time.Millisecond, nil)
	RecordOperation("get", 10*time.Millisecond, nil)
	RecordOperation("del", 100*time.Millisecond, errors.New("boom"))

	require.True(t, true)
}

func TestRecordTransaction(t *testing.T) {
	RecordTransaction("bolt", "commit", 100*time.Millisecond)
	RecordTransaction("badger", "abort", 50*time.Millisecond)
	RecordTransaction("memory", "commit", 1*time.Millisecond)

	require.True(t, true)
}

func TestRecordErrorCounter(t *testing.T) {
	RecordError("not_found")
	RecordError("io")
	RecordError("malformed_encoding")

	require.True(t, true)
}

func TestUpdateStorageMetrics(t *testing.T) {
	UpdateStorageBytes("memory", 1024)
	UpdateStorageBytes("bolt", 1024*1024)
	UpdateStorageBytes("badger", 2*1024*1024)

	require.True(t, true)
}
