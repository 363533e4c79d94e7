package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/models"
)

// CreateFriendRequest persists a new pending friendship edge.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, f *models.Friendship) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}
	if f.Status == "" {
		f.Status = models.FriendshipPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (id, requester_id, addressee_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.RequesterID, f.AddresseeID, f.Status, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend request: %w", err)
	}
	return nil
}

// AcceptFriendRequest flips a pending request to accepted.
func (s *SQLiteStore) AcceptFriendRequest(ctx context.Context, requesterID, addresseeID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE friendships SET status = ? WHERE requester_id = ? AND addressee_id = ? AND status = ?",
		models.FriendshipAccepted, requesterID, addresseeID, models.FriendshipPending,
	)
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("friend request", requesterID)
	}
	return nil
}

// DeleteFriendship removes the edge between two users in either direction.
func (s *SQLiteStore) DeleteFriendship(ctx context.Context, userID, otherID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
		 WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`,
		userID, otherID, otherID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("friendship", otherID)
	}
	return nil
}

// ListFriendships returns all edges touching the user, newest first.
func (s *SQLiteStore) ListFriendships(ctx context.Context, userID string) ([]*models.Friendship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, requester_id, addressee_id, status, created_at
		 FROM friendships
		 WHERE requester_id = ? OR addressee_id = ?
		 ORDER BY created_at DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}
	defer rows.Close()

	var friendships []*models.Friendship
	for rows.Next() {
		f := &models.Friendship{}
		if err := rows.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", err)
		}
		friendships = append(friendships, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friendships: %w", err)
	}
	return friendships, nil
}
