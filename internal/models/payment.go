package models

import "github.com/shopspring/decimal"

// PaymentStatus tracks whether a settlement payment has actually been made.
type PaymentStatus string

const (
	// PaymentPending marks a proposed or recorded but unconfirmed payment.
	PaymentPending PaymentStatus = "pending"

	// PaymentCompleted marks a payment the payee has confirmed receiving.
	// Completed payments are folded into subsequent balance computations.
	PaymentCompleted PaymentStatus = "completed"
)

// Payment is a point-to-point transfer between two group members.
//
// The settlement planner emits advisory payments that are not persisted;
// a payment only becomes a ledger entry when the caller records it.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string `json:"id"`

	// GroupID is the group whose debts this payment settles.
	GroupID string `json:"group_id"`

	// FromUserID is the debtor making the payment.
	FromUserID string `json:"from_user_id"`

	// ToUserID is the creditor receiving the payment.
	ToUserID string `json:"to_user_id"`

	// Amount is the transfer amount, always positive.
	Amount decimal.Decimal `json:"amount"`

	// Status is pending or completed.
	Status PaymentStatus `json:"status"`

	// CreatedAt is the Unix timestamp when the payment was created.
	CreatedAt int64 `json:"created_at"`
}
