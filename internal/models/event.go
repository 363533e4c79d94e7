package models

import "time"

// Event represents a dated happening.
//
// GroupID is a weak reference: it names a group but is never validated
// against the group store. CreatorID is immutable after creation and gates
// every mutating operation on the event.
type Event struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// CreatorID is the user who created the event. Immutable.
	CreatorID string

	// GroupID is the group this event belongs to (weak reference).
	GroupID string

	// Title is the display name of the event.
	Title string

	// Date is the validated instant the event occurs at.
	Date time.Time

	// Description is optional free text.
	Description string

	// Attendees is the set of user IDs attending. Unordered; no
	// duplicates.
	Attendees []string

	// Options holds optional event settings.
	Options *EventOptions

	// CreatedAt is the Unix timestamp when the event was created.
	CreatedAt int64
}

// EventOptions are optional per-event settings.
type EventOptions struct {
	// Location is a free-form place description.
	Location string

	// Reminder requests a reminder for attendees.
	Reminder bool

	// Theme is a display theme name.
	Theme string
}

// EventUpdate carries a partial update for an event. Nil fields are left
// untouched; Date, when supplied, has already been through ParseInstant.
type EventUpdate struct {
	Title       *string
	Date        *time.Time
	Description *string
	Attendees   []string
}
