// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON with camelCase field names.
//
// Amounts come in two forms: a Decimal in major units ("12.50" rupees) for
// people, and an int64 in minor units (1250 paise) for programs. Requests
// only take the Decimal form.
package api

// ShareInput is one participant entry of an expense request. Percent is used
// by PERCENT splits and Amount (major units) by CUSTOM splits.
type ShareInput struct {
	UserID  int64    `json:"userId"`
	Percent *Decimal `json:"percent,omitempty"`
	Amount  *Decimal `json:"amount,omitempty"`
}

// CreateExpenseRequest records an expense paid by one member.
//
// For EQUAL splits the participants are ParticipantIDs, or every group member
// when it is empty. PERCENT and CUSTOM splits take their participants from
// Shares.
type CreateExpenseRequest struct {
	GroupID        string       `json:"groupId"`
	Amount         Decimal      `json:"amount"`
	Currency       string       `json:"currency,omitempty"`
	PayerID        int64        `json:"payerId"`
	SplitType      string       `json:"splitType"`
	Note           string       `json:"note,omitempty"`
	ParticipantIDs []int64      `json:"participantIds,omitempty"`
	Shares         []ShareInput `json:"shares,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// PreviewSplitRequest takes the same fields as CreateExpenseRequest.
type PreviewSplitRequest = CreateExpenseRequest

// PreviewSplitResponse is the split CreateExpense would commit.
type PreviewSplitResponse struct {
	Currency    string  `json:"currency"`
	Amount      Decimal `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Shares      []Share `json:"shares"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// Expense is a committed expense with its resolved shares.
type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	Amount      Decimal `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Currency    string  `json:"currency"`
	PayerID     int64   `json:"payerId"`
	SplitType   string  `json:"splitType"`
	Note        string  `json:"note,omitempty"`
	Shares      []Share `json:"shares"`
	CreatedBy   int64   `json:"createdBy"`
	CreatedAt   int64   `json:"createdAt"`
}

// Share is one participant's resolved portion of an expense.
type Share struct {
	UserID      int64   `json:"userId"`
	Amount      Decimal `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
}

// RecordSettlementRequest records a direct payment from one member to another.
type RecordSettlementRequest struct {
	GroupID    string  `json:"groupId"`
	FromUserID int64   `json:"fromUserId"`
	ToUserID   int64   `json:"toUserId"`
	Amount     Decimal `json:"amount"`
	Currency   string  `json:"currency,omitempty"`
	Note       string  `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type Settlement struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	FromUserID  int64   `json:"fromUserId"`
	ToUserID    int64   `json:"toUserId"`
	Amount      Decimal `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
	Currency    string  `json:"currency"`
	Note        string  `json:"note,omitempty"`
	CreatedBy   int64   `json:"createdBy"`
	CreatedAt   int64   `json:"createdAt"`
}

type GetBalancesRequest struct {
	GroupID string `json:"groupId"`
}

// GetBalancesResponse lists every member's net position in group member
// order, plus a short list of payments that would settle the group.
type GetBalancesResponse struct {
	GroupID              string    `json:"groupId"`
	Currency             string    `json:"currency"`
	Balances             []Balance `json:"balances"`
	SuggestedSettlements []Debt    `json:"suggestedSettlements"`
}

// Balance is a member's net position. Positive means the group owes them.
type Balance struct {
	UserID          int64   `json:"userId"`
	Name            string  `json:"name,omitempty"`
	NetBalance      Decimal `json:"netBalance"`
	NetBalanceMinor int64   `json:"netBalanceMinor"`
	TotalPaidMinor  int64   `json:"totalPaidMinor"`
	TotalOwedMinor  int64   `json:"totalOwedMinor"`
}

// Debt is a suggested payment.
type Debt struct {
	FromUserID  int64   `json:"fromUserId"`
	ToUserID    int64   `json:"toUserId"`
	Amount      Decimal `json:"amount"`
	AmountMinor int64   `json:"amountMinor"`
}
