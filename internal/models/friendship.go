package models

// FriendshipStatus is the state of a friendship edge.
type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
)

// Friendship represents a friend request between two users and its state.
// Unrelated to the calendar/event/group core; plain CRUD.
type Friendship struct {
	// ID is the unique identifier for the friendship (UUID format).
	ID string

	// RequesterID is the user who sent the request.
	RequesterID string

	// AddresseeID is the user who received it.
	AddresseeID string

	// Status is pending until the addressee accepts.
	Status FriendshipStatus

	// CreatedAt is the Unix timestamp when the request was sent.
	CreatedAt int64
}
