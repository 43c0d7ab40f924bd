// Package ledger computes member balances and settlement plans for a group.
//
// Both entry points are pure functions over an immutable snapshot of the
// group's state: ComputeBalances folds expenses, shares and completed
// payments into per-member net positions, and PlanSettlement greedily
// matches debtors against creditors to produce a short list of transfers
// that zeroes every balance. Neither performs I/O or holds state, so
// concurrent requests for different groups need no locking here.
//
// All arithmetic is exact decimal at currency scale. The planner is a
// heuristic: it guarantees at most n-1 payments for n members with nonzero
// balance, not a globally minimal transaction count.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/models"
)

// Snapshot is the read-only input to a balance computation: a group's
// members, its expenses with their shares, and any payments already
// recorded. The caller assembles it from bulk queries so the computation
// sees one consistent view.
type Snapshot struct {
	Members         []*models.User
	Expenses        []*models.Expense
	SharesByExpense map[string][]*models.ExpenseShare
	Payments        []*models.Payment
}

// ValidateSnapshot checks the data-integrity invariants the balance fold
// relies on: every expense amount is positive, every share references a
// known member and a snapshot expense, share amounts are non-negative, and
// each expense's shares sum exactly to its amount. Violations indicate bad
// upstream data and are rejected here rather than silently absorbed.
func ValidateSnapshot(snap Snapshot) error {
	memberIDs := make(map[string]bool, len(snap.Members))
	for _, m := range snap.Members {
		memberIDs[m.ID] = true
	}

	expenseIDs := make(map[string]bool, len(snap.Expenses))
	for _, e := range snap.Expenses {
		expenseIDs[e.ID] = true
		if !e.Amount.IsPositive() {
			return fmt.Errorf("expense %s: amount %s is not positive", e.ID, e.Amount)
		}
		if !memberIDs[e.PaidBy] {
			return fmt.Errorf("expense %s: payer %s is not a group member", e.ID, e.PaidBy)
		}
	}

	for expenseID, shares := range snap.SharesByExpense {
		if !expenseIDs[expenseID] {
			return fmt.Errorf("shares reference unknown expense %s", expenseID)
		}
		for _, share := range shares {
			if share.ShareAmount.IsNegative() {
				return fmt.Errorf("expense %s: negative share %s for user %s", expenseID, share.ShareAmount, share.UserID)
			}
			if !memberIDs[share.UserID] {
				return fmt.Errorf("expense %s: share references non-member %s", expenseID, share.UserID)
			}
		}
	}

	for _, e := range snap.Expenses {
		sum := decimal.Zero
		for _, share := range snap.SharesByExpense[e.ID] {
			sum = sum.Add(share.ShareAmount)
		}
		if !sum.Equal(e.Amount) {
			return fmt.Errorf("expense %s: shares sum to %s, expense amount is %s", e.ID, sum, e.Amount)
		}
	}

	for _, p := range snap.Payments {
		if !p.Amount.IsPositive() {
			return fmt.Errorf("payment %s: amount %s is not positive", p.ID, p.Amount)
		}
		if !memberIDs[p.FromUserID] || !memberIDs[p.ToUserID] {
			return fmt.Errorf("payment %s: endpoints %s -> %s are not both group members", p.ID, p.FromUserID, p.ToUserID)
		}
	}

	return nil
}

// ComputeBalances folds the snapshot into per-member net balances.
//
// Every member starts at zero, so inactive members still appear in the
// result. For each expense the payer is credited the full amount and each
// share's user is debited their portion; completed payments credit the
// payer and debit the payee. The fold is a commutative sum, so processing
// order never affects the result.
func ComputeBalances(snap Snapshot) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal, len(snap.Members))
	for _, m := range snap.Members {
		balances[m.ID] = decimal.Zero
	}

	for _, e := range snap.Expenses {
		balances[e.PaidBy] = balances[e.PaidBy].Add(e.Amount)
		for _, share := range snap.SharesByExpense[e.ID] {
			balances[share.UserID] = balances[share.UserID].Sub(share.ShareAmount)
		}
	}

	for _, p := range snap.Payments {
		if p.Status != models.PaymentCompleted {
			continue
		}
		balances[p.FromUserID] = balances[p.FromUserID].Add(p.Amount)
		balances[p.ToUserID] = balances[p.ToUserID].Sub(p.Amount)
	}

	return balances
}
