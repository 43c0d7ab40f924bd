package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/ledger"
	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// LedgerService exposes the balance and settlement computations over a
// group's persisted state. It assembles one snapshot per request (members,
// expenses, shares in a single bulk query, recorded payments) and hands it
// to the pure ledger core.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage
// backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// snapshot loads the group's full ledger state.
func (s *LedgerService) snapshot(ctx context.Context, groupID string) (ledger.Snapshot, error) {
	var snap ledger.Snapshot

	members, err := s.store.ListGroupMembers(ctx, groupID)
	if err != nil {
		return snap, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return snap, err
	}

	expenseIDs := make([]string, len(expenses))
	for i, e := range expenses {
		expenseIDs[i] = e.ID
	}
	sharesByExpense, err := s.store.ListSharesForExpenses(ctx, expenseIDs)
	if err != nil {
		return snap, err
	}
	payments, err := s.store.ListPaymentsByGroup(ctx, groupID)
	if err != nil {
		return snap, err
	}

	snap = ledger.Snapshot{
		Members:         members,
		Expenses:        expenses,
		SharesByExpense: sharesByExpense,
		Payments:        payments,
	}
	if err := ledger.ValidateSnapshot(snap); err != nil {
		slog.Error("Ledger snapshot failed validation", "group_id", groupID, "error", err)
		return ledger.Snapshot{}, err
	}
	return snap, nil
}

// GetBalances computes every member's net balance, one entry per member
// ordered by name (the member list order), including members with no
// activity.
func (s *LedgerService) GetBalances(ctx context.Context, groupID string) ([]models.MemberBalance, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeBalances(snap)
	result := make([]models.MemberBalance, len(snap.Members))
	for i, member := range snap.Members {
		result[i] = models.MemberBalance{User: member, Balance: balances[member.ID]}
	}
	return result, nil
}

// GetSettlementPlan proposes the payments that settle the group's debts.
// The plan is advisory; nothing is persisted.
func (s *LedgerService) GetSettlementPlan(ctx context.Context, groupID string) ([]*models.Payment, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeBalances(snap)
	payments, err := ledger.PlanSettlement(balances, groupID)
	if err != nil {
		// Full balance state goes to the log; the caller sees an
		// internal error, never a partial plan.
		slog.Error("Settlement planning failed",
			"group_id", groupID,
			"error", err,
			"balances", balances,
		)
		return nil, err
	}

	slog.Info("Settlement plan computed", "group_id", groupID, "payments", len(payments))
	return payments, nil
}

// GetGroupSummary aggregates the group's activity: counts, total spend and
// per-member balances.
func (s *LedgerService) GetGroupSummary(ctx context.Context, groupID string) (*models.GroupSummary, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	snap, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, e := range snap.Expenses {
		total = total.Add(e.Amount)
	}

	balances := ledger.ComputeBalances(snap)
	memberBalances := make([]models.MemberBalance, len(snap.Members))
	for i, member := range snap.Members {
		memberBalances[i] = models.MemberBalance{User: member, Balance: balances[member.ID]}
	}

	return &models.GroupSummary{
		Group:        group,
		MemberCount:  len(snap.Members),
		ExpenseCount: len(snap.Expenses),
		TotalAmount:  total,
		Balances:     memberBalances,
	}, nil
}
