// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/costcrew/costcrew/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Implementations wrap it so callers can test with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
	// CountUserMemberships and CountUserExpenses back the delete guards:
	// a user with group memberships or paid expenses cannot be removed.
	CountUserMemberships(ctx context.Context, userID string) (int, error)
	CountUserExpenses(ctx context.Context, userID string) (int, error)

	// Groups and membership.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]*models.User, error)
	AddGroupMember(ctx context.Context, groupID, userID string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
	IsGroupMember(ctx context.Context, groupID, userID string) (bool, error)
	CountGroupExpenses(ctx context.Context, groupID string) (int, error)

	// Expenses and shares. CreateExpense persists the expense and all of
	// its shares in one transaction; DeleteExpense removes shares then the
	// expense the same way.
	CreateExpense(ctx context.Context, expense *models.Expense, shares []*models.ExpenseShare) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListSharesByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error)
	// ListSharesForExpenses fetches shares for many expenses in one query,
	// keyed by expense ID, so balance computations read a single snapshot.
	ListSharesForExpenses(ctx context.Context, expenseIDs []string) (map[string][]*models.ExpenseShare, error)
	DeleteExpense(ctx context.Context, expenseID string) error

	// Recorded settlement payments.
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus) error

	// Close releases any resources held by the store.
	Close() error
}
