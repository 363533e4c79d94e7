package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huddleapp/backend/internal/apperr"
	"github.com/huddleapp/backend/internal/models"
)

// CreateGroup persists a new group with its member set and optional role
// labels. The caller is responsible for having unioned the creator into
// Members; the store just writes what it is given.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var description interface{}
	if group.Description != "" {
		description = group.Description
	}
	private := 0
	var theme interface{}
	if group.Options != nil {
		if group.Options.Private {
			private = 1
		}
		if group.Options.Theme != "" {
			theme = group.Options.Theme
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, creator_id, title, description, private, theme, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		group.ID, group.CreatorID, group.Title, description, private, theme, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, userID := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
			group.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if group.Options != nil {
		for userID, label := range group.Options.RoleLabels {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO group_role_labels (group_id, user_id, label) VALUES (?, ?, ?)",
				group.ID, userID, label,
			)
			if err != nil {
				return fmt.Errorf("failed to insert role label: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by its primary ID, including the member set.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var description, theme sql.NullString
	var private int

	err := s.db.QueryRowContext(ctx,
		"SELECT id, creator_id, title, description, private, theme, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.CreatorID, &group.Title, &description, &private, &theme, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Description = description.String
	if private == 1 || theme.Valid {
		group.Options = &models.GroupOptions{
			Private: private == 1,
			Theme:   theme.String,
		}
	}

	members, err := s.groupMemberRows(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	labels, err := s.groupRoleLabels(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(labels) > 0 {
		if group.Options == nil {
			group.Options = &models.GroupOptions{}
		}
		group.Options.RoleLabels = labels
	}

	return group, nil
}

// GroupMembers returns the member set of a group.
func (s *SQLiteStore) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.groupMemberRows(ctx, groupID)
}

// AddMember adds a user to the group's member set. The insert is a single
// atomic statement; a second concurrent add of a different user can never
// erase this one. Returns false when the user was already a member.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add group member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveMember removes a user from the group's member set. A user who is
// not currently a member is reported as NotFound, matching the contract of
// the leave operation.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("group member", userID)
	}
	return nil
}

// requireGroup fails with NotFound unless a group with this ID exists.
// Lookup is strictly by primary ID.
func (s *SQLiteStore) requireGroup(ctx context.Context, groupID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&one)
	if err == sql.ErrNoRows {
		return apperr.NotFound("group", groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) groupMemberRows(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) groupRoleLabels(ctx context.Context, groupID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, label FROM group_role_labels WHERE group_id = ?",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get role labels: %w", err)
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var userID, label string
		if err := rows.Scan(&userID, &label); err != nil {
			return nil, fmt.Errorf("failed to scan role label: %w", err)
		}
		labels[userID] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role labels: %w", err)
	}
	return labels, nil
}
