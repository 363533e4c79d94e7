package models

// Group represents a named set of users.
//
// Membership is the group's whole job: events reference a group by ID and
// calendar aggregation fans out over its members, but neither of those is
// enforced here. The creator is always a member at creation time.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// CreatorID is the user who created the group.
	CreatorID string

	// Title is the display name of the group (e.g., "Roommates").
	Title string

	// Description is optional free text.
	Description string

	// Members is the set of user IDs in this group. Unordered; no
	// duplicates.
	Members []string

	// Options holds optional display and privacy settings.
	Options *GroupOptions

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupOptions are optional per-group settings.
type GroupOptions struct {
	// Private hides the group from non-members.
	Private bool

	// Theme is a display theme name chosen by the creator.
	Theme string

	// RoleLabels maps member user IDs to free-form role labels
	// (e.g., "organizer").
	RoleLabels map[string]string
}

// HasMember reports whether userID is in the member set.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
