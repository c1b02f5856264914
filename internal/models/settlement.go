package models

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the member who paid (debtor settling up).
	FromUserID int64

	// ToUserID is the member who received payment (creditor being paid).
	ToUserID int64

	// Amount is the payment amount in minor units. Always positive.
	Amount int64

	// Currency is the ISO 4217 code of Amount.
	Currency string

	// Note is an optional description for the settlement.
	Note string

	// CreatedBy is the member who recorded this settlement.
	CreatedBy int64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

