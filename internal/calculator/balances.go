package calculator

import (
	"fmt"
	"math"
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID     int64
	NetBalance int64 // Positive = owed money, Negative = owes money
	TotalPaid  int64 // Expenses paid plus settlements sent
	TotalOwed  int64 // Expense shares plus settlements received
}

// DebtEdge represents a suggested payment from one member to another.
type DebtEdge struct {
	From   int64 // Member who owes
	To     int64 // Member who is owed
	Amount int64
}

// CalculateGroupBalances replays a group's history and returns one row per
// member, in the order of members.
//
// Algorithm:
//   - For each expense: payer +amount, each share holder -share
//   - For each settlement: sender +amount (debt reduced), receiver -amount
//   - net_balance = total_paid - total_owed
//
// Every expense and settlement moves money between members without creating
// any, so the net balances always sum to zero. History that mentions a
// non-member, or whose totals do not fit in int64, yields ErrCorruptHistory.
func CalculateGroupBalances(members []int64, expenses []*models.Expense, settlements []*models.Settlement) ([]MemberBalance, error) {
	rows := make([]MemberBalance, len(members))
	index := make(map[int64]int, len(members))
	for i, m := range members {
		rows[i] = MemberBalance{UserID: m}
		index[m] = i
	}

	lookup := func(userID int64, source string) (*MemberBalance, error) {
		i, ok := index[userID]
		if !ok {
			return nil, fmt.Errorf("%w: user %d in %s", ErrCorruptHistory, userID, source)
		}
		return &rows[i], nil
	}

	add := func(total *int64, amount int64, userID int64, source string) error {
		sum, ok := addInt64(*total, amount)
		if !ok {
			return fmt.Errorf("%w: total for user %d overflows at %s", ErrCorruptHistory, userID, source)
		}
		*total = sum
		return nil
	}

	for _, e := range expenses {
		source := "expense " + e.ID
		payer, err := lookup(e.PayerID, source)
		if err != nil {
			return nil, err
		}
		if err := add(&payer.TotalPaid, e.Amount, e.PayerID, source); err != nil {
			return nil, err
		}

		for _, s := range e.Shares {
			holder, err := lookup(s.UserID, source)
			if err != nil {
				return nil, err
			}
			if err := add(&holder.TotalOwed, s.Amount, s.UserID, source); err != nil {
				return nil, err
			}
		}
	}

	for _, s := range settlements {
		source := "settlement " + s.ID
		from, err := lookup(s.FromUserID, source)
		if err != nil {
			return nil, err
		}
		to, err := lookup(s.ToUserID, source)
		if err != nil {
			return nil, err
		}
		if err := add(&from.TotalPaid, s.Amount, s.FromUserID, source); err != nil {
			return nil, err
		}
		if err := add(&to.TotalOwed, s.Amount, s.ToUserID, source); err != nil {
			return nil, err
		}
	}

	for i := range rows {
		net, ok := subInt64(rows[i].TotalPaid, rows[i].TotalOwed)
		if !ok {
			return nil, fmt.Errorf("%w: net balance for user %d overflows", ErrCorruptHistory, rows[i].UserID)
		}
		rows[i].NetBalance = net
	}
	return rows, nil
}

// addInt64 returns a+b and whether the sum fits in an int64.
func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func subInt64(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

// ComputeBalances returns each member's net balance keyed by user ID.
// Members with no activity are present with zero.
func ComputeBalances(members []int64, expenses []*models.Expense, settlements []*models.Settlement) (map[int64]int64, error) {
	rows, err := CalculateGroupBalances(members, expenses, settlements)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.NetBalance
	}
	return out, nil
}

// SimplifyDebts suggests a short list of payments that would bring every
// balance to zero. Debtors and creditors are matched greedily, largest
// amounts first, ties broken by lowest user ID.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type party struct {
		id     int64
		amount int64 // always positive
	}

	var debtors, creditors []party
	for _, b := range balances {
		switch {
		case b.NetBalance > 0:
			creditors = append(creditors, party{b.UserID, b.NetBalance})
		case b.NetBalance < 0:
			debtors = append(debtors, party{b.UserID, -b.NetBalance})
		}
	}
	byAmount := func(ps []party) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].amount != ps[j].amount {
				return ps[i].amount > ps[j].amount
			}
			return ps[i].id < ps[j].id
		}
	}
	sort.Slice(debtors, byAmount(debtors))
	sort.Slice(creditors, byAmount(creditors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtors[i].amount, creditors[j].amount)
		edges = append(edges, DebtEdge{From: debtors[i].id, To: creditors[j].id, Amount: amount})

		debtors[i].amount -= amount
		creditors[j].amount -= amount
		if debtors[i].amount == 0 {
			i++
		}
		if creditors[j].amount == 0 {
			j++
		}
	}
	return edges
}
