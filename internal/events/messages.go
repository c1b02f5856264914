// Package events announces committed ledger changes to other systems.
// Events are published after the database commit and are best effort: a
// failed publish is logged and never rolls back the ledger.
package events

import (
	"encoding/json"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// Event types double as AMQP routing keys.
const (
	TypeExpenseRecorded    = "expense.recorded"
	TypeSettlementRecorded = "settlement.recorded"
)

// Event is the envelope of every message. Exactly one of Expense and
// Settlement is set, matching Type.
type Event struct {
	Type       string              `json:"type"`
	GroupID    string              `json:"groupId"`
	Expense    *ExpenseRecorded    `json:"expense,omitempty"`
	Settlement *SettlementRecorded `json:"settlement,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// ExpenseRecorded describes a committed expense. Amounts are minor units.
type ExpenseRecorded struct {
	ID        string        `json:"id"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	PayerID   int64         `json:"payerId"`
	SplitType string        `json:"splitType"`
	Shares    []ShareAmount `json:"shares"`
	CreatedBy int64         `json:"createdBy"`
}

type ShareAmount struct {
	UserID int64 `json:"userId"`
	Amount int64 `json:"amount"`
}

// SettlementRecorded describes a committed settlement. Amount is minor units.
type SettlementRecorded struct {
	ID         string `json:"id"`
	FromUserID int64  `json:"fromUserId"`
	ToUserID   int64  `json:"toUserId"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	CreatedBy  int64  `json:"createdBy"`
}

// NewExpenseRecorded builds the event for a committed expense.
func NewExpenseRecorded(e *models.Expense) *Event {
	shares := make([]ShareAmount, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareAmount{UserID: s.UserID, Amount: s.Amount}
	}
	return &Event{
		Type:    TypeExpenseRecorded,
		GroupID: e.GroupID,
		Expense: &ExpenseRecorded{
			ID:        e.ID,
			Amount:    e.Amount,
			Currency:  e.Currency,
			PayerID:   e.PayerID,
			SplitType: string(e.SplitType),
			Shares:    shares,
			CreatedBy: e.CreatedBy,
		},
		Timestamp: time.Unix(e.CreatedAt, 0).UTC(),
	}
}

// NewSettlementRecorded builds the event for a committed settlement.
func NewSettlementRecorded(s *models.Settlement) *Event {
	return &Event{
		Type:    TypeSettlementRecorded,
		GroupID: s.GroupID,
		Settlement: &SettlementRecorded{
			ID:         s.ID,
			FromUserID: s.FromUserID,
			ToUserID:   s.ToUserID,
			Amount:     s.Amount,
			Currency:   s.Currency,
			CreatedBy:  s.CreatedBy,
		},
		Timestamp: time.Unix(s.CreatedAt, 0).UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event published by this package.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
