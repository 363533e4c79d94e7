package models

// Calendar is a per-user set of item references.
//
// At most one calendar exists per user. Items are opaque strings,
// semantically event IDs, but nothing checks that the referent exists. The
// weak reference keeps the calendar and event concepts fully decoupled at
// the storage layer.
type Calendar struct {
	// ID is the unique identifier for the calendar (UUID format).
	ID string

	// UserID is the owning user. Unique across calendars.
	UserID string

	// Items is the set of item references. No duplicates.
	Items []string

	// CreatedAt is the Unix timestamp when the calendar was created.
	CreatedAt int64
}
