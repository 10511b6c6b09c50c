package boltstore_test

import (
	"path/filepath"
	"testing"

	"github.com/turtacn/recordstore/kvstore"
	"github.com/turtacn/recordstore/kvstore/boltstore"
	"github.com/turtacn/recordstore/kvstore/kvstoretest"
)

func TestBoltConformance(t *testing.T) {
	kvstoretest.Conformance(t, func(t *testing.T) kvstore.Handle {
		path := filepath.Join(t.TempDir(), "store.bolt")
		b, err := boltstore.Open(path)
		if err != nil {
			t.Fatalf("open bolt backend: %v", err)
		}
		return b
	})
}
