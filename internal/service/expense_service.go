package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// ExpenseService manages expenses and their shares.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// ShareInput is one user's portion of a new expense.
type ShareInput struct {
	UserID      string          `json:"user_id"`
	ShareAmount decimal.Decimal `json:"share_amount"`
}

// CreateExpense validates a new expense against the group's membership and
// persists it with its shares atomically.
//
// The share amounts must sum exactly to the expense amount. The upstream
// data model never enforced this, but the settlement engine depends on
// balances cancelling out, so partial or over-allocated splits are
// rejected here.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID, paidBy string, amount decimal.Decimal, description string, shares []ShareInput) (*models.Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validationf("description is required")
	}
	if !amount.IsPositive() {
		return nil, validationf("amount must be positive")
	}
	if len(shares) == 0 {
		return nil, validationf("at least one share is required")
	}

	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetUser(ctx, paidBy); err != nil {
		return nil, err
	}
	isMember, err := s.store.IsGroupMember(ctx, groupID, paidBy)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, validationf("payer is not a member of the group")
	}

	seen := make(map[string]bool, len(shares))
	sum := decimal.Zero
	for _, share := range shares {
		if share.ShareAmount.IsNegative() {
			return nil, validationf("share amount for user %s is negative", share.UserID)
		}
		if seen[share.UserID] {
			return nil, validationf("duplicate share for user %s", share.UserID)
		}
		seen[share.UserID] = true

		isMember, err := s.store.IsGroupMember(ctx, groupID, share.UserID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, validationf("share user %s is not a member of the group", share.UserID)
		}
		sum = sum.Add(share.ShareAmount)
	}
	if !sum.Equal(amount) {
		return nil, validationf("shares sum to %s but expense amount is %s", sum, amount)
	}

	expense := &models.Expense{
		GroupID:     groupID,
		PaidBy:      paidBy,
		Amount:      amount,
		Description: description,
	}
	expenseShares := make([]*models.ExpenseShare, len(shares))
	for i, share := range shares {
		expenseShares[i] = &models.ExpenseShare{
			UserID:      share.UserID,
			ShareAmount: share.ShareAmount,
		}
	}

	if err := s.store.CreateExpense(ctx, expense, expenseShares); err != nil {
		slog.Error("CreateExpense failed", "group_id", groupID, "error", err)
		return nil, err
	}

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", groupID,
		"paid_by", paidBy,
		"amount", amount,
		"shares", len(shares),
	)
	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses retrieves all expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// ListGroupExpenses retrieves a group's expenses, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

// ListShares retrieves an expense's shares.
func (s *ExpenseService) ListShares(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error) {
	if _, err := s.store.GetExpense(ctx, expenseID); err != nil {
		return nil, err
	}
	return s.store.ListSharesByExpense(ctx, expenseID)
}

// DeleteExpense removes an expense and its shares atomically.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	slog.Info("Expense deleted", "expense_id", expenseID)
	return nil
}
