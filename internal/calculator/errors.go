package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation failures. Every error returned by ValidateSplit and
// ValidateSettlement is a *ValidationError wrapping exactly one of these.
var (
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrNoParticipants     = errors.New("expense must have at least one participant")
	ErrUnknownParticipant = errors.New("participant is not a member of the group")
	ErrUnknownPayer       = errors.New("payer is not a member of the group")
	ErrInvalidShare       = errors.New("share is missing or negative")
	ErrPercentSumMismatch = errors.New("percentages must sum to 100")
	ErrCustomSumMismatch  = errors.New("custom amounts must sum to the expense amount")
	ErrSameUserSettlement = errors.New("cannot settle with yourself")
	ErrNonPositiveAmount  = errors.New("settlement amount must be positive")
	ErrCurrencyMismatch   = errors.New("currency does not match the group currency")
	ErrUnknownSplitType   = errors.New("unknown split type")
)

// ErrDuplicateParticipant reports a participant listed twice. It is a kind of
// ErrUnknownParticipant and shares its wire name.
var ErrDuplicateParticipant = fmt.Errorf("%w: listed more than once", ErrUnknownParticipant)

// ErrCorruptHistory is returned by the balance functions when stored history
// references someone outside the group or sums past the range of int64. It
// indicates a data-integrity fault, not bad input.
var ErrCorruptHistory = errors.New("ledger history is corrupt")

var kinds = map[error]string{
	ErrInvalidAmount:      "INVALID_AMOUNT",
	ErrNoParticipants:     "NO_PARTICIPANTS",
	ErrUnknownParticipant: "UNKNOWN_PARTICIPANT",
	ErrUnknownPayer:       "UNKNOWN_PAYER",
	ErrInvalidShare:       "INVALID_SHARE",
	ErrPercentSumMismatch: "PERCENT_SUM_MISMATCH",
	ErrCustomSumMismatch:  "CUSTOM_SUM_MISMATCH",
	ErrSameUserSettlement: "SAME_USER_SETTLEMENT",
	ErrNonPositiveAmount:  "NON_POSITIVE_AMOUNT",
	ErrCurrencyMismatch:   "CURRENCY_MISMATCH",
	ErrUnknownSplitType:   "UNKNOWN_SPLIT_TYPE",
}

// ValidationError describes why a split or settlement request was rejected.
type ValidationError struct {
	// Err is the sentinel identifying the failure.
	Err error

	// UserID is the offending member, or zero when the failure is not tied to one.
	UserID int64

	// Actual and Expected are set for the two sum mismatches. Percent sums are
	// in percent; custom sums are in minor units.
	Actual   decimal.Decimal
	Expected decimal.Decimal
}

// Invalid wraps a sentinel in a ValidationError.
func Invalid(err error) *ValidationError {
	return &ValidationError{Err: err}
}

func invalidUser(err error, userID int64) *ValidationError {
	return &ValidationError{Err: err, UserID: userID}
}

func (e *ValidationError) Error() string {
	switch e.Err {
	case ErrPercentSumMismatch, ErrCustomSumMismatch:
		return fmt.Sprintf("%v: got %s, want %s", e.Err, e.Actual, e.Expected)
	}
	if e.UserID != 0 {
		return fmt.Sprintf("%v: user %d", e.Err, e.UserID)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Kind returns the stable wire name of the failure, e.g. "PERCENT_SUM_MISMATCH".
func (e *ValidationError) Kind() string {
	return KindOf(e.Err)
}

// KindOf returns the wire name of the validation sentinel err wraps,
// or "" if it wraps none.
func KindOf(err error) string {
	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return ""
}
