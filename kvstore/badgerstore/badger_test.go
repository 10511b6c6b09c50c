package badgerstore_test

import (
	"testing"

	"github.com/turtacn/recordstore/kvstore"
	"github.com/turtacn/recordstore/kvstore/badgerstore"
	"github.com/turtacn/recordstore/kvstore/kvstoretest"
)

func TestBadgerConformance(t *testing.T) {
	kvstoretest.Conformance(t, func(t *testing.T) kvstore.Handle {
		b, err := badgerstore.Open(t.TempDir())
		if err != nil {
			t.Fatalf("open badger backend: %v", err)
		}
		return b
	})
}
