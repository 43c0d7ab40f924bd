package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage"
)

// CreateExpense persists an expense and all of its shares in one
// transaction, so the ledger never sees an expense without its split.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, shares []*models.ExpenseShare) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.Date == 0 {
		expense.Date = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, paid_by, amount, description, date) VALUES (?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.PaidBy, expense.Amount.String(), expense.Description, expense.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, share := range shares {
		share.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, user_id, share_amount) VALUES (?, ?, ?)",
			share.ExpenseID, share.UserID, share.ShareAmount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, paid_by, amount, description, date FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PaidBy, &amount, &expense.Description, &expense.Date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if expense.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpenses retrieves all expenses, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, paid_by, amount, description, date FROM expenses ORDER BY date DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListExpensesByGroup retrieves a group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, paid_by, amount, description, date FROM expenses WHERE group_id = ? ORDER BY date DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListSharesByExpense retrieves one expense's shares.
func (s *SQLiteStore) ListSharesByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error) {
	byExpense, err := s.ListSharesForExpenses(ctx, []string{expenseID})
	if err != nil {
		return nil, err
	}
	return byExpense[expenseID], nil
}

// ListSharesForExpenses fetches shares for many expenses in a single query
// and groups them by expense ID. Balance computations use this instead of
// querying shares per expense inside a loop.
func (s *SQLiteStore) ListSharesForExpenses(ctx context.Context, expenseIDs []string) (map[string][]*models.ExpenseShare, error) {
	byExpense := make(map[string][]*models.ExpenseShare, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return byExpense, nil
	}

	query := "SELECT expense_id, user_id, share_amount FROM expense_shares WHERE expense_id IN (?" +
		repeatPlaceholder(len(expenseIDs)-1) + ") ORDER BY user_id"

	args := make([]interface{}, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		share := &models.ExpenseShare{}
		var amount string
		if err := rows.Scan(&share.ExpenseID, &share.UserID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if share.ShareAmount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		byExpense[share.ExpenseID] = append(byExpense[share.ExpenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return byExpense, nil
}

// DeleteExpense removes an expense and its shares in one transaction,
// shares first.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanExpenses(rows *sql.Rows) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var amount string
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PaidBy, &amount, &expense.Description, &expense.Date); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		var err error
		if expense.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}
