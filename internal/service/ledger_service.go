package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	store     storage.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a LedgerService. Committed expenses and
// settlements are announced on publisher.
func NewLedgerService(store storage.Store, publisher events.Publisher, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, publisher: publisher, metrics: m}
}

// groupCurrency resolves the currency of a request. An empty code means the
// group's currency; anything else must name it.
func groupCurrency(group *models.Group, requested string) (string, error) {
	if requested == "" {
		return group.Currency, nil
	}
	code, err := money.NormalizeCurrency(requested)
	if err != nil || code != group.Currency {
		return "", calculator.Invalid(calculator.ErrCurrencyMismatch)
	}
	return code, nil
}

// parseAmount converts a major-unit request amount into minor units.
func parseAmount(raw api.Decimal, currency string) (int64, error) {
	d, err := money.Parse(raw.String())
	if err != nil {
		return 0, calculator.Invalid(fmt.Errorf("%w: %q", calculator.ErrInvalidAmount, raw))
	}
	minor, err := money.ToMinor(d, currency)
	if err != nil {
		return 0, calculator.Invalid(fmt.Errorf("%w: %v", calculator.ErrInvalidAmount, err))
	}
	return minor, nil
}

// buildSplit validates an expense request against group and computes its
// shares. Errors are *calculator.ValidationError.
func buildSplit(group *models.Group, req *api.CreateExpenseRequest) (*calculator.ValidatedSplit, []models.Share, error) {
	currency, err := groupCurrency(group, req.Currency)
	if err != nil {
		return nil, nil, err
	}
	total, err := parseAmount(req.Amount, currency)
	if err != nil {
		return nil, nil, err
	}
	splitType, err := models.ParseSplitType(req.SplitType)
	if err != nil {
		return nil, nil, calculator.Invalid(calculator.ErrUnknownSplitType)
	}

	var participants []calculator.ParticipantInput
	switch splitType {
	case models.SplitEqual:
		ids := req.ParticipantIDs
		if len(ids) == 0 {
			ids = group.MemberIDs
		}
		for _, id := range ids {
			participants = append(participants, calculator.ParticipantInput{UserID: id})
		}

	default:
		for _, s := range req.Shares {
			p := calculator.ParticipantInput{UserID: s.UserID}
			if splitType == models.SplitPercent && s.Percent != nil {
				pct, err := money.Parse(s.Percent.String())
				if err != nil {
					return nil, nil, &calculator.ValidationError{Err: calculator.ErrInvalidShare, UserID: s.UserID}
				}
				p.Percent = &pct
			}
			if splitType == models.SplitCustom && s.Amount != nil {
				d, err := money.Parse(s.Amount.String())
				if err != nil {
					return nil, nil, &calculator.ValidationError{Err: calculator.ErrInvalidShare, UserID: s.UserID}
				}
				minor := money.Shift(d, currency)
				p.Amount = &minor
			}
			participants = append(participants, p)
		}
	}

	v, err := calculator.ValidateSplit(calculator.SplitRequest{
		Amount:       total,
		Currency:     currency,
		PayerID:      req.PayerID,
		SplitType:    splitType,
		Participants: participants,
	}, group.MemberIDs)
	if err != nil {
		return nil, nil, err
	}
	return v, calculator.SplitShares(v), nil
}

// CreateExpense validates, splits and records an expense.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"caller", caller,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
	)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	v, shares, err := buildSplit(group, req.Msg)
	if err != nil {
		slog.Warn("CreateExpense rejected", "group_id", group.ID, "error", err)
		return nil, invalidRequest(s.metrics, err, group.Currency)
	}

	expense := &models.Expense{
		GroupID:   group.ID,
		Amount:    v.Amount,
		Currency:  v.Currency,
		PayerID:   v.PayerID,
		SplitType: v.SplitType,
		Note:      req.Msg.Note,
		Shares:    shares,
		CreatedBy: caller,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, internalError("CreateExpense", err, "group_id", group.ID)
	}
	s.metrics.ExpensesRecorded.WithLabelValues(string(expense.SplitType)).Inc()
	s.publish(ctx, events.NewExpenseRecorded(expense))

	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"amount_minor", expense.Amount,
		"shares", len(expense.Shares),
	)

	return connect.NewResponse(&api.CreateExpenseResponse{
		Expense: toAPIExpense(expense),
	}), nil
}

// PreviewSplit returns the shares CreateExpense would record, without
// recording anything.
func (s *LedgerService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("PreviewSplit request received", "group_id", req.Msg.GroupID, "caller", caller)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	v, shares, err := buildSplit(group, req.Msg)
	if err != nil {
		slog.Warn("PreviewSplit rejected", "group_id", group.ID, "error", err)
		return nil, invalidRequest(s.metrics, err, group.Currency)
	}

	return connect.NewResponse(&api.PreviewSplitResponse{
		Currency:    v.Currency,
		Amount:      amount(v.Amount, v.Currency),
		AmountMinor: v.Amount,
		Shares:      toAPIShares(shares, v.Currency),
	}), nil
}

// ListExpenses returns a group's expenses in the order they were recorded.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, internalError("ListExpenses", err, "group_id", group.ID)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// RecordSettlement records a direct payment between two members.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	settlement, err := buildSettlement(group, req.Msg, caller)
	if err != nil {
		slog.Warn("RecordSettlement rejected", "group_id", group.ID, "error", err)
		return nil, invalidRequest(s.metrics, err, group.Currency)
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, internalError("RecordSettlement", err, "group_id", group.ID)
	}
	s.metrics.SettlementsRecorded.Inc()
	s.publish(ctx, events.NewSettlementRecorded(settlement))

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", group.ID,
		"amount_minor", settlement.Amount,
	)

	return connect.NewResponse(&api.RecordSettlementResponse{
		Settlement: toAPISettlement(settlement),
	}), nil
}

func buildSettlement(group *models.Group, req *api.RecordSettlementRequest, caller int64) (*models.Settlement, error) {
	currency, err := groupCurrency(group, req.Currency)
	if err != nil {
		return nil, err
	}
	// Same-user payments are rejected before the amount is even looked at.
	if req.FromUserID == req.ToUserID {
		return nil, &calculator.ValidationError{Err: calculator.ErrSameUserSettlement, UserID: req.FromUserID}
	}
	minor, err := parseAmount(req.Amount, currency)
	if err != nil {
		return nil, err
	}

	err = calculator.ValidateSettlement(calculator.SettlementRequest{
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     minor,
	}, group.MemberIDs)
	if err != nil {
		return nil, err
	}

	return &models.Settlement{
		GroupID:    group.ID,
		FromUserID: req.FromUserID,
		ToUserID:   req.ToUserID,
		Amount:     minor,
		Currency:   currency,
		Note:       req.Note,
		CreatedBy:  caller,
	}, nil
}

// ListSettlements returns a group's settlements in the order they were recorded.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, internalError("ListSettlements", err, "group_id", group.ID)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}

	slog.Info("ListSettlements successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// GetBalances replays the group's history into per-member balances and
// suggests the payments that would clear them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, err := groupForCaller(ctx, s.store, req.Msg.GroupID, caller)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		expenses    []*models.Expense
		settlements []*models.Settlement
		members     map[int64]*models.Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpensesByGroup(gctx, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		settlements, err = s.store.ListSettlementsByGroup(gctx, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		members, err = s.store.GetMembers(gctx, group.MemberIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internalError("GetBalances", fmt.Errorf("loading history: %w", err), "group_id", group.ID)
	}

	balances, err := calculator.CalculateGroupBalances(group.MemberIDs, expenses, settlements)
	if err != nil {
		return nil, internalError("GetBalances", err, "group_id", group.ID)
	}
	debts := calculator.SimplifyDebts(balances)
	s.metrics.ObserveBalance(start)

	resp := &api.GetBalancesResponse{
		GroupID:              group.ID,
		Currency:             group.Currency,
		Balances:             make([]api.Balance, len(balances)),
		SuggestedSettlements: make([]api.Debt, len(debts)),
	}
	for i, b := range balances {
		resp.Balances[i] = api.Balance{
			UserID:          b.UserID,
			NetBalance:      amount(b.NetBalance, group.Currency),
			NetBalanceMinor: b.NetBalance,
			TotalPaidMinor:  b.TotalPaid,
			TotalOwedMinor:  b.TotalOwed,
		}
		if m, ok := members[b.UserID]; ok {
			resp.Balances[i].Name = m.Name
		}
	}
	for i, d := range debts {
		resp.SuggestedSettlements[i] = api.Debt{
			FromUserID:  d.From,
			ToUserID:    d.To,
			Amount:      amount(d.Amount, group.Currency),
			AmountMinor: d.Amount,
		}
	}

	slog.Info("GetBalances successful",
		"group_id", group.ID,
		"expenses", len(expenses),
		"settlements", len(settlements),
		"suggested", len(debts),
	)
	return connect.NewResponse(resp), nil
}

// publish announces a committed change. The ledger is already written, so a
// failure is only logged and counted.
func (s *LedgerService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		slog.Error("Failed to publish event", "type", event.Type, "group_id", event.GroupID, "error", err)
		s.metrics.EventPublishFailures.WithLabelValues(event.Type).Inc()
	}
}
