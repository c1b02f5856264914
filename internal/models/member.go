package models

// Member represents a person who can take part in a group's expenses.
type Member struct {
	// ID is the numeric member identifier. Equal-split remainders are
	// handed out in ascending ID order, so IDs must be stable.
	ID int64

	// Name is the display name of the member.
	Name string

	// Email is the member's email address.
	Email string
}
