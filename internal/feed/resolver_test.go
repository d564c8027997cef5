package feed

import (
	"context"
	"testing"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendsOfResolvesBothDirections(t *testing.T) {
	records := store.NewMemoryStore()
	seedConnection(t, records, "c1", "alice", "bob", models.ConnectionApproved)
	seedConnection(t, records, "c2", "carol", "alice", models.ConnectionApproved)

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"bob": {}, "carol": {}}, friends)
}

func TestFriendsOfIgnoresInactiveAndUnrelated(t *testing.T) {
	records := store.NewMemoryStore()
	seedConnection(t, records, "c1", "alice", "bob", models.ConnectionPending)
	seedConnection(t, records, "c2", "alice", "carol", models.ConnectionRejected)
	seedConnection(t, records, "c3", "dave", "erin", models.ConnectionApproved)

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	assert.Empty(t, friends)
}

func TestFriendsOfDeduplicates(t *testing.T) {
	records := store.NewMemoryStore()
	// Duplicate approved rows for the same pair, one per direction.
	seedConnection(t, records, "c1", "alice", "bob", models.ConnectionApproved)
	seedConnection(t, records, "c2", "bob", "alice", models.ConnectionApproved)

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"bob": {}}, friends)
}

func TestFriendsOfSkipsLegacyMissingSender(t *testing.T) {
	records := store.NewMemoryStore()
	// Legacy row: no sender reference, caller is the recipient.
	_, err := records.Insert(context.Background(), store.CollectionConnections, store.Record{
		"id":         "legacy",
		"recipient":  "users/alice",
		"status":     models.ConnectionApproved,
		"created_at": time.Now().Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	seedConnection(t, records, "c1", "bob", "alice", models.ConnectionApproved)

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	// The unresolvable row is dropped, the good one survives.
	assert.Equal(t, map[string]struct{}{"bob": {}}, friends)
}

func TestFriendsOfSkipsUnparsableRow(t *testing.T) {
	records := store.NewMemoryStore()
	_, err := records.Insert(context.Background(), store.CollectionConnections, store.Record{
		"id":         "broken",
		"sender":     "not-a-reference",
		"recipient":  12345,
		"status":     models.ConnectionApproved,
		"created_at": "yesterday",
	})
	require.NoError(t, err)
	seedConnection(t, records, "c1", "alice", "bob", models.ConnectionApproved)

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, map[string]struct{}{"bob": {}}, friends)
}

func TestFriendsOfEmptyStore(t *testing.T) {
	records := store.NewMemoryStore()

	friends, err := NewResolver(records).FriendsOf(context.Background(), "alice")
	require.NoError(t, err)

	assert.Empty(t, friends)
}

func seedConnection(t *testing.T, records store.RecordStore, id, senderID, recipientID, status string) {
	t.Helper()
	mustInsert(t, records, store.CollectionConnections, models.Connection{
		ID:        id,
		Sender:    models.NewRef(store.CollectionUsers, senderID),
		Recipient: models.NewRef(store.CollectionUsers, recipientID),
		Status:    status,
		CreatedAt: time.Now(),
	})
}
