// Package calculator holds the pure money logic of splitledger: validating
// expense and settlement requests, dividing expenses into exact shares, and
// folding a group's history into net balances.
//
// All amounts are int64 minor units. Nothing in this package does I/O.
package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// SplitShares divides a validated expense into one Share per participant,
// ordered by ascending user ID. The share amounts always sum to v.Amount and
// are never negative. The result depends only on the input.
func SplitShares(v *ValidatedSplit) []models.Share {
	var alloc map[int64]int64
	switch v.SplitType {
	case models.SplitEqual:
		alloc = splitEqual(v.Amount, v.participants)
	case models.SplitPercent:
		alloc = splitPercent(v.Amount, v.participants, v.percents)
	default:
		alloc = v.amounts
	}

	shares := make([]models.Share, len(v.participants))
	for i, id := range v.participants {
		shares[i] = models.Share{UserID: id, Amount: alloc[id]}
	}
	return shares
}

// splitEqual gives everyone amount/N and hands the remainder out one minor
// unit at a time, lowest ID first. ids must be sorted ascending.
func splitEqual(amount int64, ids []int64) map[int64]int64 {
	n := int64(len(ids))
	base, remainder := amount/n, amount%n

	out := make(map[int64]int64, len(ids))
	for i, id := range ids {
		out[id] = base
		if int64(i) < remainder {
			out[id]++
		}
	}
	return out
}

// splitPercent computes amount × p / Σp for each participant and rounds with
// the largest-remainder method. Dividing by the actual sum instead of 100
// keeps sums that are within tolerance of 100 from creating or losing money.
func splitPercent(amount int64, ids []int64, percents map[int64]decimal.Decimal) map[int64]int64 {
	sum := decimal.Zero
	for _, id := range ids {
		sum = sum.Add(percents[id])
	}

	total := decimal.NewFromInt(amount)
	exact := make(map[int64]decimal.Decimal, len(ids))
	for _, id := range ids {
		exact[id] = total.Mul(percents[id]).Div(sum)
	}
	return allocate(amount, ids, exact)
}

// allocate turns exact fractional amounts into whole minor units summing to
// total. Each participant gets the floor of their exact amount; the units left
// over go one at a time to the largest fractional parts, ties to the lowest ID.
// Σ exact must lie within one unit of total, which bounds the leftover by the
// number of participants.
func allocate(total int64, ids []int64, exact map[int64]decimal.Decimal) map[int64]int64 {
	type remainder struct {
		id   int64
		frac decimal.Decimal
	}

	out := make(map[int64]int64, len(ids))
	rems := make([]remainder, 0, len(ids))
	var assigned int64
	for _, id := range ids {
		floor := exact[id].Floor()
		out[id] = floor.IntPart()
		assigned += out[id]
		rems = append(rems, remainder{id: id, frac: exact[id].Sub(floor)})
	}

	sort.Slice(rems, func(i, j int) bool {
		if c := rems[i].frac.Cmp(rems[j].frac); c != 0 {
			return c > 0
		}
		return rems[i].id < rems[j].id
	})

	for i := 0; assigned < total; i++ {
		out[rems[i%len(rems)].id]++
		assigned++
	}
	return out
}
