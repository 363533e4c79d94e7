// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/huddleapp/backend/internal/models"
)

// Each concept owns one collection and raises its own NotFound errors; no
// store calls another store. Set-valued fields are mutated element-wise:
// the add/remove methods are atomic single-element operations and report
// whether anything changed, so idempotent no-ops are distinguishable from
// real mutations.

// GroupStore owns group membership sets.
type GroupStore interface {
	// CreateGroup persists a new group. The caller has already added the
	// creator to Members; the store assigns ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its member set. NotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GroupMembers returns the member set. NotFound if the group is
	// absent.
	GroupMembers(ctx context.Context, groupID string) ([]string, error)

	// AddMember adds userID to the member set. Returns false (no error)
	// if already a member. NotFound if the group is absent.
	AddMember(ctx context.Context, groupID, userID string) (bool, error)

	// RemoveMember removes userID from the member set. NotFound if the
	// group is absent or userID is not currently a member.
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// EventStore owns events and their attendee sets.
type EventStore interface {
	// CreateEvent persists a new event; the store assigns ID and
	// CreatedAt. The date has already been validated by the caller.
	CreateEvent(ctx context.Context, event *models.Event) error

	// GetEvent retrieves an event. NotFound if absent.
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)

	// ListEvents returns all events ordered ascending by instant.
	ListEvents(ctx context.Context) ([]*models.Event, error)

	// ListEventsByAttendee returns events whose attendee set contains
	// userID, ascending by instant.
	ListEventsByAttendee(ctx context.Context, userID string) ([]*models.Event, error)

	// ListEventsByGroup returns the group's events ascending by instant.
	ListEventsByGroup(ctx context.Context, groupID string) ([]*models.Event, error)

	// UpdateEvent applies a partial update; nil fields are untouched.
	// NotFound if the event is absent.
	UpdateEvent(ctx context.Context, eventID string, update *models.EventUpdate) error

	// DeleteEvent removes an event by ID. NotFound if absent.
	DeleteEvent(ctx context.Context, eventID string) error

	// DeleteEventsByCreatorAndGroup bulk-deletes and returns the count
	// removed. Zero matches is not an error.
	DeleteEventsByCreatorAndGroup(ctx context.Context, creatorID, groupID string) (int, error)

	// AddAttendee adds attendeeID to the attendee set. Returns false if
	// already present. NotFound if the event is absent.
	AddAttendee(ctx context.Context, eventID, attendeeID string) (bool, error)
}

// CalendarStore owns one set of item references per user.
type CalendarStore interface {
	// CreateCalendar is idempotent: the first call creates an empty
	// calendar for userID, later calls return the existing one
	// unchanged with created=false.
	CreateCalendar(ctx context.Context, userID string) (*models.Calendar, bool, error)

	// GetCalendarByUser retrieves a user's calendar. NotFound if the
	// user has none.
	GetCalendarByUser(ctx context.Context, userID string) (*models.Calendar, error)

	// AddItem adds itemRef to the user's calendar. Returns false if
	// already present. NotFound if the user has no calendar; creation is
	// never auto-triggered here.
	AddItem(ctx context.Context, userID, itemRef string) (bool, error)

	// RemoveItem removes itemRef. Returns false if it was absent.
	// NotFound if the user has no calendar.
	RemoveItem(ctx context.Context, userID, itemRef string) (bool, error)

	// ItemsByUsers concatenates (without deduplication) the item sets of
	// the given users, in input order. Users without a calendar are
	// silently skipped.
	ItemsByUsers(ctx context.Context, userIDs []string) ([]string, error)
}

// UserStore is the user directory consumed by the session layer.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns (nil, nil) when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns (nil, nil) when no such user exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// FriendStore owns the friendship graph. CRUD only; the core never reads it.
type FriendStore interface {
	CreateFriendRequest(ctx context.Context, f *models.Friendship) error

	// AcceptFriendRequest flips the pending request from requesterID to
	// addresseeID to accepted. NotFound if no pending request exists.
	AcceptFriendRequest(ctx context.Context, requesterID, addresseeID string) error

	// DeleteFriendship removes the edge between the two users in either
	// direction. NotFound if none exists.
	DeleteFriendship(ctx context.Context, userID, otherID string) error

	// ListFriendships returns all edges touching userID, newest first.
	ListFriendships(ctx context.Context, userID string) ([]*models.Friendship, error)
}

// Store is the full persistence surface. One implementation backs all
// concepts, but each concept only ever touches its own tables.
type Store interface {
	GroupStore
	EventStore
	CalendarStore
	UserStore
	FriendStore

	// Close releases any resources held by the store.
	Close() error
}
