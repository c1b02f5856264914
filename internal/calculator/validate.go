package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	hundred = decimal.NewFromInt(100)

	// percentTolerance absorbs human-entered thirds like 33.333 + 33.333 + 33.334.
	percentTolerance = decimal.RequireFromString("0.001")
)

// ParticipantInput is one entry of an expense's participant list.
// Percent is read for PERCENT splits, Amount for CUSTOM splits.
type ParticipantInput struct {
	UserID  int64
	Percent *decimal.Decimal
	Amount  *decimal.Decimal // minor units; may carry a fraction of a minor unit
}

// SplitRequest is an expense to be validated and split.
type SplitRequest struct {
	Amount       int64 // minor units
	Currency     string
	PayerID      int64
	SplitType    models.SplitType
	Participants []ParticipantInput
}

// ValidatedSplit is a SplitRequest that passed ValidateSplit.
// Only ValidateSplit can build one, so SplitShares never sees bad input.
type ValidatedSplit struct {
	Amount    int64
	Currency  string
	PayerID   int64
	SplitType models.SplitType

	participants []int64 // ascending
	percents     map[int64]decimal.Decimal
	amounts      map[int64]int64
}

// Participants returns the participant IDs in ascending order.
func (v *ValidatedSplit) Participants() []int64 {
	return append([]int64(nil), v.participants...)
}

// ValidateSplit checks an expense request against the group's members.
// Checks run in a fixed order: amount, payer, participant list, then the
// numbers required by the split type. The first failure is returned as a
// *ValidationError.
func ValidateSplit(req SplitRequest, members []int64) (*ValidatedSplit, error) {
	if req.Amount <= 0 || req.Amount > money.MaxMinor {
		return nil, Invalid(ErrInvalidAmount)
	}

	memberSet := make(map[int64]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	if !memberSet[req.PayerID] {
		return nil, invalidUser(ErrUnknownPayer, req.PayerID)
	}
	if len(req.Participants) == 0 {
		return nil, Invalid(ErrNoParticipants)
	}

	seen := make(map[int64]bool, len(req.Participants))
	ids := make([]int64, 0, len(req.Participants))
	for _, p := range req.Participants {
		if seen[p.UserID] {
			return nil, invalidUser(ErrDuplicateParticipant, p.UserID)
		}
		if !memberSet[p.UserID] {
			return nil, invalidUser(ErrUnknownParticipant, p.UserID)
		}
		seen[p.UserID] = true
		ids = append(ids, p.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	v := &ValidatedSplit{
		Amount:       req.Amount,
		Currency:     req.Currency,
		PayerID:      req.PayerID,
		SplitType:    req.SplitType,
		participants: ids,
	}

	switch req.SplitType {
	case models.SplitEqual:
		return v, nil

	case models.SplitPercent:
		v.percents = make(map[int64]decimal.Decimal, len(req.Participants))
		sum := decimal.Zero
		for _, p := range req.Participants {
			if p.Percent == nil || p.Percent.IsNegative() {
				return nil, invalidUser(ErrInvalidShare, p.UserID)
			}
			v.percents[p.UserID] = *p.Percent
			sum = sum.Add(*p.Percent)
		}
		if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
			return nil, &ValidationError{Err: ErrPercentSumMismatch, Actual: sum, Expected: hundred}
		}
		return v, nil

	case models.SplitCustom:
		exact := make(map[int64]decimal.Decimal, len(req.Participants))
		sum := decimal.Zero
		for _, p := range req.Participants {
			if p.Amount == nil || p.Amount.IsNegative() {
				return nil, invalidUser(ErrInvalidShare, p.UserID)
			}
			exact[p.UserID] = *p.Amount
			sum = sum.Add(*p.Amount)
		}
		total := decimal.NewFromInt(req.Amount)
		if sum.Sub(total).Abs().GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, &ValidationError{Err: ErrCustomSumMismatch, Actual: sum, Expected: total}
		}
		// Whole-unit inputs pass through unchanged; fractional ones are
		// settled to whole minor units here so the splitter copies exact values.
		v.amounts = allocate(req.Amount, ids, exact)
		return v, nil

	default:
		return nil, Invalid(ErrUnknownSplitType)
	}
}

// SettlementRequest is a payment to be validated.
type SettlementRequest struct {
	FromUserID int64
	ToUserID   int64
	Amount     int64 // minor units
}

// ValidateSettlement checks a settlement against the group's members.
func ValidateSettlement(req SettlementRequest, members []int64) error {
	if req.FromUserID == req.ToUserID {
		return invalidUser(ErrSameUserSettlement, req.FromUserID)
	}
	if req.Amount <= 0 {
		return Invalid(ErrNonPositiveAmount)
	}
	if req.Amount > money.MaxMinor {
		return Invalid(ErrInvalidAmount)
	}
	memberSet := make(map[int64]bool, len(members))
	for _, m := range members {
		memberSet[m] = true
	}
	for _, id := range []int64{req.FromUserID, req.ToUserID} {
		if !memberSet[id] {
			return invalidUser(ErrUnknownParticipant, id)
		}
	}
	return nil
}
