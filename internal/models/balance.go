package models

import "github.com/shopspring/decimal"

// MemberBalance is one member's net position within a group.
// Positive means the member is owed money, negative means they owe.
// Balances are derived from expenses and shares on every request and
// never persisted.
type MemberBalance struct {
	User    *User           `json:"user"`
	Balance decimal.Decimal `json:"balance"`
}

// GroupSummary aggregates a group's activity for the overview endpoint.
type GroupSummary struct {
	Group        *Group          `json:"group"`
	MemberCount  int             `json:"member_count"`
	ExpenseCount int             `json:"expense_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Balances     []MemberBalance `json:"balances"`
}
