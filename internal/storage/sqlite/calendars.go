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

// CreateCalendar lazily creates the user's calendar. The UNIQUE constraint
// on user_id makes the create idempotent under races: whoever loses the
// insert just reads back the winner's row. Returns created=false when a
// calendar already existed.
func (s *SQLiteStore) CreateCalendar(ctx context.Context, userID string) (*models.Calendar, bool, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO calendars (id, user_id, created_at) VALUES (?, ?, ?)",
		uuid.New().String(), userID, time.Now().Unix(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create calendar: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	calendar, err := s.GetCalendarByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return calendar, n > 0, nil
}

// GetCalendarByUser retrieves a user's calendar with its item set.
func (s *SQLiteStore) GetCalendarByUser(ctx context.Context, userID string) (*models.Calendar, error) {
	calendar := &models.Calendar{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM calendars WHERE user_id = ?",
		userID,
	).Scan(&calendar.ID, &calendar.UserID, &calendar.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("calendar", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	items, err := s.calendarItems(ctx, calendar.ID)
	if err != nil {
		return nil, err
	}
	calendar.Items = items
	return calendar, nil
}

// AddItem adds an item reference to the user's calendar. Any string is
// accepted; item refs are weak references and never checked against the
// event store. The insert is one atomic statement, so two concurrent adds
// of different refs both survive. Returns false when the ref was already
// present. NotFound if the user has no calendar; adding never creates one.
func (s *SQLiteStore) AddItem(ctx context.Context, userID, itemRef string) (bool, error) {
	calendarID, err := s.calendarIDForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO calendar_items (calendar_id, item_ref) VALUES (?, ?)",
		calendarID, itemRef,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add calendar item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// RemoveItem removes an item reference from the user's calendar. Returns
// false when the ref was not present (idempotent no-op).
func (s *SQLiteStore) RemoveItem(ctx context.Context, userID, itemRef string) (bool, error) {
	calendarID, err := s.calendarIDForUser(ctx, userID)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM calendar_items WHERE calendar_id = ? AND item_ref = ?",
		calendarID, itemRef,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove calendar item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// ItemsByUsers concatenates the item sets of the given users in input
// order. Users without a calendar are skipped, not errors. The result is
// not deduplicated: the same ref on two calendars appears twice.
func (s *SQLiteStore) ItemsByUsers(ctx context.Context, userIDs []string) ([]string, error) {
	items := []string{}
	for _, userID := range userIDs {
		calendarID, err := s.calendarIDForUser(ctx, userID)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		userItems, err := s.calendarItems(ctx, calendarID)
		if err != nil {
			return nil, err
		}
		items = append(items, userItems...)
	}
	return items, nil
}

func (s *SQLiteStore) calendarIDForUser(ctx context.Context, userID string) (string, error) {
	var calendarID string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM calendars WHERE user_id = ?", userID,
	).Scan(&calendarID)
	if err == sql.ErrNoRows {
		return "", apperr.NotFound("calendar", userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up calendar: %w", err)
	}
	return calendarID, nil
}

func (s *SQLiteStore) calendarItems(ctx context.Context, calendarID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT item_ref FROM calendar_items WHERE calendar_id = ? ORDER BY item_ref",
		calendarID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar items: %w", err)
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan calendar item: %w", err)
		}
		items = append(items, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate calendar items: %w", err)
	}
	return items, nil
}
