package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/models"
)

// MinTransfer is the smallest amount worth proposing as a payment.
// Residual balances at or below this threshold are treated as settled.
var MinTransfer = decimal.New(1, -2) // 0.01

// InvariantError reports an internal accounting failure: the balances
// handed to the planner do not cancel out, or the matching loop failed to
// converge. It carries the full balance state for diagnosis and is distinct
// from user-input validation errors.
type InvariantError struct {
	Reason   string
	Balances map[string]decimal.Decimal
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("settlement invariant violated: %s", e.Reason)
}

type balanceEntry struct {
	userID  string
	balance decimal.Decimal
}

// PlanSettlement produces a sequence of payments that drives every balance
// to zero (within MinTransfer). Matching is greedy two-pointer: members are
// sorted by balance ascending, the largest debtor pays the largest creditor
// the smaller of the two magnitudes, and whichever side reaches exactly
// zero advances. The plan has at most n-1 payments for n members with
// nonzero balance; it is deterministic because equal balances tie-break on
// member ID.
//
// The returned payments are proposals with fresh IDs and pending status;
// nothing is persisted here.
func PlanSettlement(balances map[string]decimal.Decimal, groupID string) ([]*models.Payment, error) {
	entries := make([]balanceEntry, 0, len(balances))
	sum := decimal.Zero
	for userID, balance := range balances {
		entries = append(entries, balanceEntry{userID: userID, balance: balance})
		sum = sum.Add(balance)
	}

	// Balances are paid-minus-owed over the same expenses, so they must
	// cancel. A nonzero sum means shares are missing or corrupt upstream.
	if sum.Abs().GreaterThan(MinTransfer) {
		return nil, &InvariantError{
			Reason:   fmt.Sprintf("balances sum to %s, want 0", sum),
			Balances: balances,
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].balance.Cmp(entries[j].balance); c != 0 {
			return c < 0
		}
		return entries[i].userID < entries[j].userID
	})

	var payments []*models.Payment
	now := time.Now().Unix()
	i, j := 0, len(entries)-1

	// Each iteration zeroes at least one cursor, so 2n is a safe bound;
	// exceeding it means the loop is not making progress.
	maxIterations := 2 * len(entries)
	for iter := 0; i < j; iter++ {
		if iter >= maxIterations {
			return nil, &InvariantError{
				Reason:   fmt.Sprintf("matching exceeded %d iterations", maxIterations),
				Balances: balances,
			}
		}

		debtor, creditor := &entries[i], &entries[j]
		if debtor.balance.Sign() >= 0 || creditor.balance.Sign() <= 0 {
			break // no transferable debt remains
		}

		amount := decimal.Min(debtor.balance.Neg(), creditor.balance)

		if amount.GreaterThan(MinTransfer) {
			payments = append(payments, &models.Payment{
				ID:         uuid.New().String(),
				GroupID:    groupID,
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     amount,
				Status:     models.PaymentPending,
				CreatedAt:  now,
			})
		}

		debtor.balance = debtor.balance.Add(amount)
		creditor.balance = creditor.balance.Sub(amount)

		if debtor.balance.IsZero() {
			i++
		}
		if creditor.balance.IsZero() {
			j--
		}
	}

	// Core post-condition: everything left is settled within MinTransfer.
	for _, e := range entries {
		if e.balance.Abs().GreaterThan(MinTransfer) {
			return nil, &InvariantError{
				Reason:   fmt.Sprintf("residual balance %s for member %s after matching", e.balance, e.userID),
				Balances: balances,
			}
		}
	}

	return payments, nil
}
