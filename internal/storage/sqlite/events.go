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

const eventColumns = "id, creator_id, group_id, title, date_ms, description, location, reminder, theme, created_at"

// CreateEvent persists a new event with its attendee set. Dates are stored
// as UTC milliseconds so ordering and the canonical millisecond rendering
// both fall out of the column.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var description, location, theme interface{}
	reminder := 0
	if event.Description != "" {
		description = event.Description
	}
	if event.Options != nil {
		if event.Options.Location != "" {
			location = event.Options.Location
		}
		if event.Options.Reminder {
			reminder = 1
		}
		if event.Options.Theme != "" {
			theme = event.Options.Theme
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.CreatorID, event.GroupID, event.Title,
		event.Date.UTC().UnixMilli(), description, location, reminder, theme,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	for _, userID := range event.Attendees {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO event_attendees (event_id, user_id) VALUES (?, ?)",
			event.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetEvent retrieves an event by ID, including its attendee set.
func (s *SQLiteStore) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", eventID)

	event, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("event", eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if err := s.attachAttendees(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns all events ordered ascending by instant.
func (s *SQLiteStore) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return s.listEvents(ctx,
		"SELECT "+eventColumns+" FROM events ORDER BY date_ms ASC")
}

// ListEventsByAttendee returns events whose attendee set contains userID.
func (s *SQLiteStore) ListEventsByAttendee(ctx context.Context, userID string) ([]*models.Event, error) {
	return s.listEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id IN (SELECT event_id FROM event_attendees WHERE user_id = ?) ORDER BY date_ms ASC",
		userID)
}

// ListEventsByGroup returns the group's events ascending by instant. The
// group ID is a weak reference; an unknown group simply yields no rows.
func (s *SQLiteStore) ListEventsByGroup(ctx context.Context, groupID string) ([]*models.Event, error) {
	return s.listEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE group_id = ? ORDER BY date_ms ASC",
		groupID)
}

// UpdateEvent applies a partial update: only non-nil fields are written,
// everything else is untouched. The creator and group are immutable here.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, eventID string, update *models.EventUpdate) error {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if update.Title != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE events SET title = ? WHERE id = ?", *update.Title, eventID); err != nil {
			return fmt.Errorf("failed to update title: %w", err)
		}
	}
	if update.Date != nil {
		if _, err := tx.ExecContext(ctx, "UPDATE events SET date_ms = ? WHERE id = ?", update.Date.UTC().UnixMilli(), eventID); err != nil {
			return fmt.Errorf("failed to update date: %w", err)
		}
	}
	if update.Description != nil {
		var description interface{}
		if *update.Description != "" {
			description = *update.Description
		}
		if _, err := tx.ExecContext(ctx, "UPDATE events SET description = ? WHERE id = ?", description, eventID); err != nil {
			return fmt.Errorf("failed to update description: %w", err)
		}
	}
	if update.Attendees != nil {
		// Supplying attendees replaces the set wholesale; that is the
		// update contract, distinct from the element-wise AddAttendee.
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_attendees WHERE event_id = ?", eventID); err != nil {
			return fmt.Errorf("failed to clear attendees: %w", err)
		}
		for _, userID := range update.Attendees {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO event_attendees (event_id, user_id) VALUES (?, ?)",
				eventID, userID); err != nil {
				return fmt.Errorf("failed to insert attendee: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteEvent removes an event by ID.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// DeleteEventsByCreatorAndGroup bulk-deletes a creator's events in a group
// and returns the count removed. Zero matches is a successful no-op.
func (s *SQLiteStore) DeleteEventsByCreatorAndGroup(ctx context.Context, creatorID, groupID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM events WHERE creator_id = ? AND group_id = ?",
		creatorID, groupID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(n), nil
}

// AddAttendee adds a user to the event's attendee set. Returns false when
// the user was already attending.
func (s *SQLiteStore) AddAttendee(ctx context.Context, eventID, attendeeID string) (bool, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO event_attendees (event_id, user_id) VALUES (?, ?)",
		eventID, attendeeID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add attendee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) requireEvent(ctx context.Context, eventID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return apperr.NotFound("event", eventID)
	}
	if err != nil {
		return fmt.Errorf("failed to check event existence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) listEvents(ctx context.Context, query string, args ...interface{}) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	for _, event := range events {
		if err := s.attachAttendees(ctx, event); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (s *SQLiteStore) attachAttendees(ctx context.Context, event *models.Event) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM event_attendees WHERE event_id = ? ORDER BY user_id",
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("failed to scan attendee: %w", err)
		}
		event.Attendees = append(event.Attendees, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate attendees: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (*models.Event, error) {
	event := &models.Event{}
	var dateMs int64
	var description, location, theme sql.NullString
	var reminder int

	err := row.Scan(&event.ID, &event.CreatorID, &event.GroupID, &event.Title,
		&dateMs, &description, &location, &reminder, &theme, &event.CreatedAt)
	if err != nil {
		return nil, err
	}

	event.Date = time.UnixMilli(dateMs).UTC()
	event.Description = description.String
	if location.Valid || theme.Valid || reminder == 1 {
		event.Options = &models.EventOptions{
			Location: location.String,
			Reminder: reminder == 1,
			Theme:    theme.String,
		}
	}
	return event, nil
}
