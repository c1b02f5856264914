package calculator

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func expense(id string, payer int64, amount int64, shares map[int64]int64) *models.Expense {
	e := &models.Expense{ID: id, PayerID: payer, Amount: amount}
	for uid, amt := range shares {
		e.Shares = append(e.Shares, models.Share{UserID: uid, Amount: amt})
	}
	return e
}

func settlement(id string, from, to, amount int64) *models.Settlement {
	return &models.Settlement{ID: id, FromUserID: from, ToUserID: to, Amount: amount}
}

func sumBalances(balances map[int64]int64) int64 {
	var total int64
	for _, b := range balances {
		total += b
	}
	return total
}

func TestComputeBalances_ExpenseThenSettlement(t *testing.T) {
	const alice, bob = 1, 2
	members := []int64{alice, bob}

	v, err := ValidateSplit(SplitRequest{
		Amount: 60, PayerID: alice, SplitType: models.SplitEqual,
		Participants: equalParticipants(alice, bob),
	}, members)
	require.NoError(t, err)
	e := &models.Expense{ID: "e1", PayerID: alice, Amount: 60, Shares: SplitShares(v)}

	balances, err := ComputeBalances(members, []*models.Expense{e}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{alice: 30, bob: -30}, balances)

	balances, err = ComputeBalances(members, []*models.Expense{e}, []*models.Settlement{settlement("s1", bob, alice, 30)})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{alice: 0, bob: 0}, balances)
}

func TestCalculateGroupBalances(t *testing.T) {
	members := []int64{3, 1, 2}
	expenses := []*models.Expense{
		expense("e1", 1, 90, map[int64]int64{1: 30, 2: 30, 3: 30}),
		expense("e2", 2, 40, map[int64]int64{1: 40}),
	}

	rows, err := CalculateGroupBalances(members, expenses, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Rows follow member order.
	assert.Equal(t, MemberBalance{UserID: 3, NetBalance: -30, TotalPaid: 0, TotalOwed: 30}, rows[0])
	assert.Equal(t, MemberBalance{UserID: 1, NetBalance: 20, TotalPaid: 90, TotalOwed: 70}, rows[1])
	assert.Equal(t, MemberBalance{UserID: 2, NetBalance: 10, TotalPaid: 40, TotalOwed: 30}, rows[2])
}

func TestCalculateGroupBalances_IdleMembersIncluded(t *testing.T) {
	rows, err := CalculateGroupBalances([]int64{1, 2, 3}, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Zero(t, r.NetBalance)
	}
}

func TestCalculateGroupBalances_CorruptHistory(t *testing.T) {
	members := []int64{1, 2}

	tests := []struct {
		name        string
		expenses    []*models.Expense
		settlements []*models.Settlement
	}{
		{name: "payer outside group", expenses: []*models.Expense{expense("e1", 9, 10, map[int64]int64{1: 10})}},
		{name: "share outside group", expenses: []*models.Expense{expense("e1", 1, 10, map[int64]int64{7: 10})}},
		{name: "settlement sender outside group", settlements: []*models.Settlement{settlement("s1", 8, 1, 5)}},
		{name: "settlement receiver outside group", settlements: []*models.Settlement{settlement("s1", 1, 8, 5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateGroupBalances(members, tt.expenses, tt.settlements)
			assert.ErrorIs(t, err, ErrCorruptHistory)
			assert.Empty(t, KindOf(err), "integrity faults are not validation errors")
		})
	}
}

func TestCalculateGroupBalances_Overflow(t *testing.T) {
	const alice, bob = 1, 2
	members := []int64{alice, bob}
	huge := int64(math.MaxInt64/2 + 1)

	tests := []struct {
		name        string
		expenses    []*models.Expense
		settlements []*models.Settlement
	}{
		{
			name: "payer total",
			expenses: []*models.Expense{
				expense("e1", alice, huge, map[int64]int64{bob: huge}),
				expense("e2", alice, huge, map[int64]int64{bob: huge}),
			},
		},
		{
			name: "share total",
			expenses: []*models.Expense{
				expense("e1", alice, huge, map[int64]int64{bob: huge}),
				expense("e2", bob, huge, map[int64]int64{bob: huge}),
			},
		},
		{
			name:     "settlement on top of expenses",
			expenses: []*models.Expense{expense("e1", alice, huge, map[int64]int64{bob: huge})},
			settlements: []*models.Settlement{
				settlement("s1", alice, bob, huge),
			},
		},
		{
			name:     "net balance",
			expenses: []*models.Expense{expense("e1", alice, math.MaxInt64, map[int64]int64{alice: -2, bob: math.MaxInt64})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, err := ComputeBalances(members, tt.expenses, tt.settlements)
			assert.ErrorIs(t, err, ErrCorruptHistory)
			assert.Nil(t, balances)
		})
	}
}

func TestCalculateGroupBalances_LargestAcceptedAmounts(t *testing.T) {
	const alice, bob = 1, 2
	members := []int64{alice, bob}

	v, err := ValidateSplit(SplitRequest{
		Amount: money.MaxMinor, PayerID: alice, SplitType: models.SplitEqual,
		Participants: equalParticipants(bob),
	}, members)
	require.NoError(t, err)

	var expenses []*models.Expense
	for i := 0; i < 1000; i++ {
		expenses = append(expenses, &models.Expense{
			ID: fmt.Sprintf("e%d", i), PayerID: alice, Amount: v.Amount, Shares: SplitShares(v),
		})
	}

	balances, err := ComputeBalances(members, expenses, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000*money.MaxMinor, balances[alice])
	assert.Equal(t, -1000*money.MaxMinor, balances[bob])
}

func TestComputeBalances_ZeroSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	members := []int64{1, 2, 3, 4, 5}
	types := []models.SplitType{models.SplitEqual, models.SplitPercent}

	var expenses []*models.Expense
	var settlements []*models.Settlement
	for i := 0; i < 200; i++ {
		payer := members[rng.Intn(len(members))]
		n := rng.Intn(len(members)) + 1
		ids := make([]int64, n)
		for k, idx := range rng.Perm(len(members))[:n] {
			ids[k] = members[idx]
		}

		req := SplitRequest{Amount: rng.Int63n(100_000) + 1, PayerID: payer, SplitType: types[rng.Intn(len(types))]}
		if req.SplitType == models.SplitPercent {
			// Even split of 100 with the remainder on the first participant.
			each := 100 / n
			for k, id := range ids {
				p := each
				if k == 0 {
					p += 100 - each*n
				}
				req.Participants = append(req.Participants, ParticipantInput{UserID: id, Percent: dec(fmt.Sprint(p))})
			}
		} else {
			req.Participants = equalParticipants(ids...)
		}

		v, err := ValidateSplit(req, members)
		require.NoError(t, err)
		expenses = append(expenses, &models.Expense{ID: fmt.Sprintf("e%d", i), PayerID: payer, Amount: req.Amount, Shares: SplitShares(v)})

		if i%3 == 0 {
			from := members[rng.Intn(len(members))]
			to := members[(rng.Intn(len(members)-1)+int(from))%len(members)]
			if from != to {
				settlements = append(settlements, settlement(fmt.Sprintf("s%d", i), from, to, rng.Int63n(5000)+1))
			}
		}

		balances, err := ComputeBalances(members, expenses, settlements)
		require.NoError(t, err)
		require.Zero(t, sumBalances(balances), "after %d expenses", i+1)
		require.Len(t, balances, len(members))
	}
}

func TestComputeBalances_SettlementEffect(t *testing.T) {
	members := []int64{1, 2, 3}
	expenses := []*models.Expense{
		expense("e1", 1, 300, map[int64]int64{1: 100, 2: 100, 3: 100}),
		expense("e2", 3, 50, map[int64]int64{2: 50}),
	}

	before, err := ComputeBalances(members, expenses, nil)
	require.NoError(t, err)

	after, err := ComputeBalances(members, expenses, []*models.Settlement{settlement("s1", 2, 1, 75)})
	require.NoError(t, err)

	assert.Equal(t, before[2]+75, after[2])
	assert.Equal(t, before[1]-75, after[1])
	assert.Equal(t, before[3], after[3])
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name     string
		balances []MemberBalance
		want     []DebtEdge
	}{
		{
			name:     "settled group",
			balances: []MemberBalance{{UserID: 1}, {UserID: 2}},
			want:     nil,
		},
		{
			name:     "one debtor one creditor",
			balances: []MemberBalance{{UserID: 1, NetBalance: 30}, {UserID: 2, NetBalance: -30}},
			want:     []DebtEdge{{From: 2, To: 1, Amount: 30}},
		},
		{
			name: "largest amounts matched first",
			balances: []MemberBalance{
				{UserID: 1, NetBalance: 50},
				{UserID: 2, NetBalance: -20},
				{UserID: 3, NetBalance: -30},
				{UserID: 4, NetBalance: 0},
			},
			want: []DebtEdge{
				{From: 3, To: 1, Amount: 30},
				{From: 2, To: 1, Amount: 20},
			},
		},
		{
			name: "ties broken by lowest id",
			balances: []MemberBalance{
				{UserID: 4, NetBalance: 10},
				{UserID: 2, NetBalance: 10},
				{UserID: 3, NetBalance: -10},
				{UserID: 1, NetBalance: -10},
			},
			want: []DebtEdge{
				{From: 1, To: 2, Amount: 10},
				{From: 3, To: 4, Amount: 10},
			},
		},
		{
			name: "debt split across creditors",
			balances: []MemberBalance{
				{UserID: 1, NetBalance: -100},
				{UserID: 2, NetBalance: 60},
				{UserID: 3, NetBalance: 40},
			},
			want: []DebtEdge{
				{From: 1, To: 2, Amount: 60},
				{From: 1, To: 3, Amount: 40},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyDebts(tt.balances)
			assert.Equal(t, tt.want, got)

			// Applying the suggested payments clears every balance.
			net := make(map[int64]int64)
			for _, b := range tt.balances {
				net[b.UserID] = b.NetBalance
			}
			for _, e := range got {
				net[e.From] += e.Amount
				net[e.To] -= e.Amount
			}
			for id, b := range net {
				assert.Zero(t, b, "user %d", id)
			}
		})
	}
}
