// Package models defines the core domain models for Huddle.
//
// # Concepts
//
// Each model below is owned by exactly one store ("concept") with its own
// identity space:
//   - Group: a membership set with a creator and display metadata
//   - Event: a dated happening tied to a group, with an attendee set
//   - Calendar: one per user, holding opaque references to items
//   - User: a registered account, used by the session layer
//   - Friendship: a pending or accepted relationship between two users
//
// # Design Principles
//
// 1. **No storage-level coupling**: references between concepts are plain ID
// strings (an event's GroupID, a calendar item naming an event). Nothing at
// the storage layer guarantees the referent exists; integrity checks happen
// in the service layer where they are wanted.
//
// 2. **Avoid circular references**: use ID strings instead of pointers for
// relationships.
//
// 3. **Set-valued fields** (group members, event attendees, calendar items)
// are persisted as junction rows and mutated element-wise, never by
// rewriting the whole set.
package models
