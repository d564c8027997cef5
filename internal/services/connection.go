package services

import (
	"context"
	"fmt"
	"time"

	"pawfeed-backend/internal/models"
	"pawfeed-backend/internal/store"

	"github.com/google/uuid"
)

// ConnectionService handles friend requests between users.
type ConnectionService struct {
	records store.RecordStore
}

// NewConnectionService creates a new connection service.
func NewConnectionService(records store.RecordStore) *ConnectionService {
	return &ConnectionService{records: records}
}

// SendRequest creates a pending connection from sender to recipient. At most
// one active (pending or approved) connection may exist per user pair.
func (s *ConnectionService) SendRequest(ctx context.Context, senderID, recipientID string) (*models.Connection, error) {
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot connect with yourself")
	}
	if _, err := s.records.GetByID(ctx, store.CollectionUsers, recipientID); err != nil {
		return nil, fmt.Errorf("recipient not found: %w", err)
	}

	active, err := s.activeBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fmt.Errorf("a connection between these users already exists")
	}

	conn := models.Connection{
		ID:        uuid.New().String(),
		Sender:    models.NewRef(store.CollectionUsers, senderID),
		Recipient: models.NewRef(store.CollectionUsers, recipientID),
		Status:    models.ConnectionPending,
		CreatedAt: time.Now(),
	}

	rec, err := store.Encode(conn)
	if err != nil {
		return nil, err
	}
	if _, err := s.records.Insert(ctx, store.CollectionConnections, rec); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return &conn, nil
}

// Respond approves or rejects a pending request. Only the recipient may
// respond.
func (s *ConnectionService) Respond(ctx context.Context, userID, connectionID string, approve bool) (*models.Connection, error) {
	if connectionID == "" {
		return nil, store.ErrMissingID
	}

	rec, err := s.records.GetByID(ctx, store.CollectionConnections, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	var conn models.Connection
	if err := store.Decode(rec, &conn); err != nil {
		return nil, fmt.Errorf("failed to decode connection: %w", err)
	}

	if conn.Recipient.ID != userID {
		return nil, fmt.Errorf("only the recipient can respond to a request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, fmt.Errorf("connection is not pending")
	}

	if approve {
		conn.Status = models.ConnectionApproved
	} else {
		conn.Status = models.ConnectionRejected
	}

	updated, err := store.Encode(conn)
	if err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, store.CollectionConnections, connectionID, updated); err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return &conn, nil
}

// ListPending returns the pending requests addressed to a user.
func (s *ConnectionService) ListPending(ctx context.Context, userID string) ([]models.Connection, error) {
	recs, err := s.records.QueryByField(ctx, store.CollectionConnections, "recipient", models.NewRef(store.CollectionUsers, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	pending := make([]models.Connection, 0, len(recs))
	for _, rec := range recs {
		var conn models.Connection
		if err := store.Decode(rec, &conn); err != nil {
			return nil, fmt.Errorf("failed to decode connection: %w", err)
		}
		if conn.Status == models.ConnectionPending {
			pending = append(pending, conn)
		}
	}
	return pending, nil
}

// activeBetween reports whether a pending or approved connection already
// exists between the two users, in either direction.
func (s *ConnectionService) activeBetween(ctx context.Context, userA, userB string) (bool, error) {
	for _, field := range []string{"sender", "recipient"} {
		recs, err := s.records.QueryByField(ctx, store.CollectionConnections, field, models.NewRef(store.CollectionUsers, userA))
		if err != nil {
			return false, fmt.Errorf("failed to query connections: %w", err)
		}
		for _, rec := range recs {
			var conn models.Connection
			if err := store.Decode(rec, &conn); err != nil {
				continue
			}
			if conn.Status != models.ConnectionPending && conn.Status != models.ConnectionApproved {
				continue
			}
			if conn.Sender.ID == userB || conn.Recipient.ID == userB {
				return true, nil
			}
		}
	}
	return false, nil
}
