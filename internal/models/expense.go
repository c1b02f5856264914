package models

import (
	"fmt"
	"strings"
)

// SplitType selects how an expense amount is divided among participants.
type SplitType string

const (
	// SplitEqual divides the amount evenly; leftover minor units go to the
	// lowest member IDs first.
	SplitEqual SplitType = "EQUAL"
	// SplitPercent divides the amount by per-participant percentages.
	SplitPercent SplitType = "PERCENT"
	// SplitCustom takes explicit per-participant amounts.
	SplitCustom SplitType = "CUSTOM"
)

// ParseSplitType parses a split type name, ignoring case and surrounding spaces.
func ParseSplitType(s string) (SplitType, error) {
	switch t := SplitType(strings.ToUpper(strings.TrimSpace(s))); t {
	case SplitEqual, SplitPercent, SplitCustom:
		return t, nil
	default:
		return "", fmt.Errorf("unknown split type %q", s)
	}
}

// Expense represents an amount paid by one member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Amount is the total paid, in minor units. Always positive.
	Amount int64

	// Currency is the ISO 4217 code of Amount.
	Currency string

	// PayerID is the member who paid.
	PayerID int64

	// SplitType is the strategy that produced Shares.
	SplitType SplitType

	// Note is a free-text description (e.g., "Dinner at Toit").
	Note string

	// Shares is each participant's portion. The amounts sum to Amount exactly.
	Shares []Share

	// CreatedBy is the member who recorded the expense.
	CreatedBy int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Share is one participant's portion of an expense.
type Share struct {
	UserID int64
	Amount int64 // minor units, never negative
}
