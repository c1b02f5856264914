package models

// Group represents a set of members who share expenses.
// Groups are owned by the directory; this service only reads them.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Currency is the ISO 4217 code every expense and settlement in the group uses.
	Currency string

	// MemberIDs is the ordered list of member IDs. IDs are unique.
	MemberIDs []int64

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID int64) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
