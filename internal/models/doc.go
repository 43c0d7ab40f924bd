// Package models defines the core domain models for CostCrew.
//
// All monetary amounts use decimal.Decimal at currency scale (two decimal
// places). Chained additions over many small shares must cancel exactly for
// the settlement engine to work, so float64 is never used for money.
//
// Relationships are expressed through ID strings rather than pointers to
// avoid circular references; users, groups, expenses, shares and payments
// mirror the persisted tables, while MemberBalance and GroupSummary are
// derived per request and never stored.
package models
