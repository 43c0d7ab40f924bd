package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage/sqlite"
)

type testEnv struct {
	users    *UserService
	groups   *GroupService
	expenses *ExpenseService
	ledger   *LedgerService
	payments *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		users:    NewUserService(store),
		groups:   NewGroupService(store),
		expenses: NewExpenseService(store),
		ledger:   NewLedgerService(store),
		payments: NewPaymentService(store),
	}
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// seedTrio creates users A, B, C in one group and returns them in name order.
func seedTrio(t *testing.T, env *testEnv) (*models.Group, []*models.User) {
	t.Helper()
	ctx := context.Background()

	var members []*models.User
	for _, name := range []string{"A", "B", "C"} {
		user, err := env.users.CreateUser(ctx, name, "")
		if err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
		members = append(members, user)
	}

	group, err := env.groups.CreateGroup(ctx, "Trip", "")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	for _, m := range members {
		if err := env.groups.AddMember(ctx, group.ID, m.ID); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", m.Name, err)
		}
	}
	return group, members
}

func evenShares(users []*models.User, amounts ...string) []ShareInput {
	shares := make([]ShareInput, len(users))
	for i, u := range users {
		d, _ := decimal.NewFromString(amounts[i])
		shares[i] = ShareInput{UserID: u.ID, ShareAmount: d}
	}
	return shares
}

func balanceByUser(balances []models.MemberBalance) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(balances))
	for _, b := range balances {
		out[b.User.ID] = b.Balance
	}
	return out
}

func TestGetBalancesSingleExpense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, members := seedTrio(t, env)
	a, b, c := members[0], members[1], members[2]

	_, err := env.expenses.CreateExpense(ctx, group.ID, a.ID, mustDec(t, "30"), "Dinner",
		evenShares(members, "10", "10", "10"))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	balances, err := env.ledger.GetBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}

	got := balanceByUser(balances)
	for userID, want := range map[string]string{a.ID: "20", b.ID: "-10", c.ID: "-10"} {
		if !got[userID].Equal(mustDec(t, want)) {
			t.Errorf("balance[%s] = %s, want %s", userID, got[userID], want)
		}
	}
}

func TestGetBalancesEmptyGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, _ := seedTrio(t, env)

	balances, err := env.ledger.GetBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3 (inactive members still appear)", len(balances))
	}
	for _, b := range balances {
		if !b.Balance.IsZero() {
			t.Errorf("balance[%s] = %s, want 0", b.User.Name, b.Balance)
		}
	}

	plan, err := env.ledger.GetSettlementPlan(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("got %d payments for a group with no expenses, want 0", len(plan))
	}
}

func TestSettlementPlanTrio(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, members := seedTrio(t, env)
	a, b, c := members[0], members[1], members[2]

	_, err := env.expenses.CreateExpense(ctx, group.ID, a.ID, mustDec(t, "30"), "Dinner",
		evenShares(members, "10", "10", "10"))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	plan, err := env.ledger.GetSettlementPlan(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("got %d payments, want 2", len(plan))
	}

	// Equal debtors tie-break on member ID, both pay A in full.
	first, second := b, c
	if c.ID < b.ID {
		first, second = c, b
	}
	if plan[0].FromUserID != first.ID || plan[1].FromUserID != second.ID {
		t.Errorf("payer order: %s, %s; want %s, %s",
			plan[0].FromUserID, plan[1].FromUserID, first.ID, second.ID)
	}
	for i, p := range plan {
		if p.ToUserID != a.ID {
			t.Errorf("payment[%d] to %s, want %s", i, p.ToUserID, a.ID)
		}
		if !p.Amount.Equal(mustDec(t, "10")) {
			t.Errorf("payment[%d] amount = %s, want 10", i, p.Amount)
		}
		if p.Status != models.PaymentPending {
			t.Errorf("payment[%d] status = %s, want pending", i, p.Status)
		}
	}
}

func TestSettlementPlanCancellingExpenses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, members := seedTrio(t, env)
	a, b := members[0], members[1]

	for _, payer := range []string{a.ID, b.ID} {
		_, err := env.expenses.CreateExpense(ctx, group.ID, payer, mustDec(t, "9.00"), "Lunch",
			evenShares(members, "3", "3", "3"))
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	balances, err := env.ledger.GetBalances(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	// Each payer nets +6 on their own expense and -3 on the other's.
	got := balanceByUser(balances)
	if !got[a.ID].Equal(mustDec(t, "3")) || !got[b.ID].Equal(mustDec(t, "3")) {
		t.Errorf("balances = %v", got)
	}
	if !got[members[2].ID].Equal(mustDec(t, "-6")) {
		t.Errorf("balances = %v", got)
	}

	plan, err := env.ledger.GetSettlementPlan(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	// C owes A and B 3 each; two payments settle everything.
	if len(plan) != 2 {
		t.Fatalf("got %d payments, want 2", len(plan))
	}
	for i, p := range plan {
		if p.FromUserID != members[2].ID {
			t.Errorf("payment[%d] from %s, want %s", i, p.FromUserID, members[2].ID)
		}
		if !p.Amount.Equal(mustDec(t, "3")) {
			t.Errorf("payment[%d] amount = %s, want 3", i, p.Amount)
		}
	}
}

func TestSettlementPlanAfterCompletedPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, members := seedTrio(t, env)
	a, b := members[0], members[1]

	_, err := env.expenses.CreateExpense(ctx, group.ID, a.ID, mustDec(t, "30"), "Dinner",
		evenShares(members, "10", "10", "10"))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	payment, err := env.payments.RecordPayment(ctx, group.ID, b.ID, a.ID, mustDec(t, "10"))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	// Pending payments do not change the plan.
	plan, err := env.ledger.GetSettlementPlan(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("got %d payments with pending settlement, want 2", len(plan))
	}

	if _, err := env.payments.CompletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("CompletePayment failed: %v", err)
	}

	plan, err = env.ledger.GetSettlementPlan(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetSettlementPlan failed: %v", err)
	}
	if len(plan) != 1 {
		t.Fatalf("got %d payments after completion, want 1", len(plan))
	}
	if plan[0].FromUserID == b.ID {
		t.Errorf("settled debtor %s still in plan", b.ID)
	}
}

func TestGetGroupSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	group, members := seedTrio(t, env)
	a := members[0]

	for _, amount := range []string{"30.00", "12.60"} {
		third := mustDec(t, amount).Div(decimal.NewFromInt(3)).Round(2)
		rest := mustDec(t, amount).Sub(third.Mul(decimal.NewFromInt(2)))
		_, err := env.expenses.CreateExpense(ctx, group.ID, a.ID, mustDec(t, amount), "Stuff",
			[]ShareInput{
				{UserID: members[0].ID, ShareAmount: rest},
				{UserID: members[1].ID, ShareAmount: third},
				{UserID: members[2].ID, ShareAmount: third},
			})
		if err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
	}

	summary, err := env.ledger.GetGroupSummary(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	if summary.Group.ID != group.ID {
		t.Errorf("summary group = %s, want %s", summary.Group.ID, group.ID)
	}
	if summary.MemberCount != 3 {
		t.Errorf("member count = %d, want 3", summary.MemberCount)
	}
	if summary.ExpenseCount != 2 {
		t.Errorf("expense count = %d, want 2", summary.ExpenseCount)
	}
	if !summary.TotalAmount.Equal(mustDec(t, "42.60")) {
		t.Errorf("total = %s, want 42.60", summary.TotalAmount)
	}
	if len(summary.Balances) != 3 {
		t.Errorf("got %d balances, want 3", len(summary.Balances))
	}
}

func TestGetBalancesUnknownGroup(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.ledger.GetBalances(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown group")
	}
}
