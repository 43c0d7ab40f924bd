package models

import "github.com/shopspring/decimal"

// Expense represents money one member paid on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group this expense belongs to.
	GroupID string `json:"group_id"`

	// PaidBy is the ID of the user who paid the full amount.
	PaidBy string `json:"paid_by"`

	// Amount is the full amount paid, always positive.
	Amount decimal.Decimal `json:"amount"`

	// Description says what the expense was for.
	Description string `json:"description"`

	// Date is the Unix timestamp when the expense was recorded.
	Date int64 `json:"date"`
}

// ExpenseShare attributes a portion of one expense to one user.
// For a valid expense the share amounts sum exactly to the expense amount.
type ExpenseShare struct {
	// ExpenseID is the expense this share belongs to.
	ExpenseID string `json:"expense_id"`

	// UserID is the user this portion is attributed to.
	UserID string `json:"user_id"`

	// ShareAmount is this user's portion, zero or positive.
	ShareAmount decimal.Decimal `json:"share_amount"`
}
