package feed

import (
	"context"
	"fmt"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/rs/zerolog/log"
)

// Resolver determines friend relationships from connection records.
type Resolver struct {
	records store.RecordStore
}

// NewResolver creates a new relationship resolver.
func NewResolver(records store.RecordStore) *Resolver {
	return &Resolver{records: records}
}

// FriendsOf returns the set of user ids with an approved connection to
// userID. Rows that cannot be decoded, or legacy rows where the caller is
// the recipient and the sender reference is missing, are skipped. Only the
// connection scan itself can fail the call.
func (r *Resolver) FriendsOf(ctx context.Context, userID string) (map[string]struct{}, error) {
	recs, err := r.records.QueryByField(ctx, store.CollectionConnections, "status", models.ConnectionApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to scan connections: %w", err)
	}

	friends := make(map[string]struct{})
	for _, rec := range recs {
		var conn models.Connection
		if err := store.Decode(rec, &conn); err != nil {
			log.Warn().Err(err).Str("connection_id", rec.ID()).Msg("Skipping unparsable connection")
			continue
		}

		switch {
		case conn.Sender.ID == userID:
			friends[conn.Recipient.ID] = struct{}{}
		case conn.Recipient.ID == userID && !conn.Sender.IsZero():
			friends[conn.Sender.ID] = struct{}{}
		case conn.Recipient.ID == userID:
			// Legacy row with no sender reference; there is no way to tell
			// who the counterpart is.
			log.Warn().Str("connection_id", conn.ID).Msg("Skipping connection with missing sender")
		}
	}
	return friends, nil
}
