//go:build integration
// +build integration

// integration/backends_test.go
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go-drop-registry/store"
)

// backend is one store under test.
type backend struct {
	name  string
	store store.Interface
}

// backends returns the memory store plus MongoDB (MONGO_TEST_URI) and the
// Firestore emulator (FIRESTORE_EMULATOR_HOST) when they are configured.
func backends(t *testing.T) []backend {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	out := []backend{{name: "memory", store: store.NewMemoryStore()}}

	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		dbName := fmt.Sprintf("drops_it_%d", time.Now().UnixNano())
		s, err := store.NewMongoStore(ctx, uri, dbName, 200*time.Millisecond)
		require.NoError(t, err)
		require.NoError(t, s.EnsureIndexes(ctx))
		t.Cleanup(func() {
			_ = s.Database.Drop(context.Background())
			_ = s.Close(context.Background())
		})
		out = append(out, backend{name: "mongo", store: s})
	} else {
		t.Log("MONGO_TEST_URI not set, skipping MongoDB")
	}

	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		s, err := store.NewFirestoreStore(ctx, "demo-drop-registry", "")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close(context.Background()) })
		out = append(out, backend{name: "firestore", store: s})
	} else {
		t.Log("FIRESTORE_EMULATOR_HOST not set, skipping Firestore")
	}
	return out
}
