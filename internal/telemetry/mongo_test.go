package telemetry

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server only when TELEMETRY_MONGODB_URI is set.
func TestMongoStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("TELEMETRY_MONGODB_URI")
	if uri == "" {
		t.Skip("TELEMETRY_MONGODB_URI not set, skipping MongoDB test")
	}

	ctx := context.Background()
	db := "ml_interface_test_" + NewRecord("x").ID.String()[:8]
	store, err := NewMongoStore(ctx, uri, db, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		_ = store.Close()
	})

	rec := testRecord("Begone.")
	require.NoError(t, store.Send(ctx, rec))
	// Upserts make a resend harmless.
	require.NoError(t, store.Send(ctx, rec))

	convs, err := store.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)

	c := convs[0]
	assert.Equal(t, rec.ID.String(), c.ID)
	assert.Equal(t, "Hello", c.Prompt)
	assert.Equal(t, "Begone.", c.Reply)
	assert.Equal(t, 3, c.DispositionChange)
	assert.Equal(t, rec.Messages, c.Messages)
	assert.Empty(t, c.Missing)

	var ids []string
	require.NoError(t, store.Each(ctx, CollectionInput, func(id string, doc []byte) error {
		ids = append(ids, id)
		assert.Contains(t, string(doc), `"prompt"`)
		return nil
	}))
	assert.Equal(t, []string{rec.ID.String()}, ids)
}
