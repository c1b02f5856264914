package service

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
)

func amount(minor int64, currency string) api.Decimal {
	return api.Decimal(money.Format(minor, currency))
}

func toAPIShares(shares []models.Share, currency string) []api.Share {
	out := make([]api.Share, len(shares))
	for i, s := range shares {
		out[i] = api.Share{
			UserID:      s.UserID,
			Amount:      amount(s.Amount, currency),
			AmountMinor: s.Amount,
		}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Amount:      amount(e.Amount, e.Currency),
		AmountMinor: e.Amount,
		Currency:    e.Currency,
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		Note:        e.Note,
		Shares:      toAPIShares(e.Shares, e.Currency),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      amount(s.Amount, s.Currency),
		AmountMinor: s.Amount,
		Currency:    s.Currency,
		Note:        s.Note,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
}

// toAPIGroup lists members in group order. IDs missing from members are
// still listed, without a name.
func toAPIGroup(g *models.Group, members map[int64]*models.Member) *api.Group {
	out := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Currency:  g.Currency,
		Members:   make([]*api.Member, len(g.MemberIDs)),
		CreatedAt: g.CreatedAt,
	}
	for i, id := range g.MemberIDs {
		m := &api.Member{ID: id}
		if rec, ok := members[id]; ok {
			m.Name = rec.Name
			m.Email = rec.Email
		}
		out.Members[i] = m
	}
	return out
}
