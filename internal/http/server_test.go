package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/costcrew/costcrew/internal/models"
	"github.com/costcrew/costcrew/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ts := httptest.NewServer(NewServer(store).Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional JSON body and decodes the
// response into out (skipped when out is nil).
func doJSON(t *testing.T, ts *httptest.Server, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func createUser(t *testing.T, ts *httptest.Server, name string) *models.User {
	t.Helper()
	var user models.User
	status := doJSON(t, ts, http.MethodPost, "/api/users",
		map[string]string{"name": name}, &user)
	if status != http.StatusCreated {
		t.Fatalf("create user %s: status %d", name, status)
	}
	return &user
}

func setupGroup(t *testing.T, ts *httptest.Server, names ...string) (string, []*models.User) {
	t.Helper()

	var users []*models.User
	for _, name := range names {
		users = append(users, createUser(t, ts, name))
	}

	var group models.Group
	status := doJSON(t, ts, http.MethodPost, "/api/groups",
		map[string]string{"name": "Trip"}, &group)
	if status != http.StatusCreated {
		t.Fatalf("create group: status %d", status)
	}

	for _, u := range users {
		status := doJSON(t, ts, http.MethodPost, "/api/groups/"+group.ID+"/members",
			map[string]string{"user_id": u.ID}, nil)
		if status != http.StatusNoContent {
			t.Fatalf("add member %s: status %d", u.Name, status)
		}
	}
	return group.ID, users
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	if status := doJSON(t, ts, http.MethodGet, "/api/health", nil, &body); status != http.StatusOK {
		t.Fatalf("status %d, want 200", status)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	user := createUser(t, ts, "Alice")
	if user.ID == "" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	var fetched models.User
	if status := doJSON(t, ts, http.MethodGet, "/api/users/"+user.ID, nil, &fetched); status != http.StatusOK {
		t.Fatalf("get user: status %d", status)
	}
	if fetched.ID != user.ID {
		t.Errorf("fetched ID = %s, want %s", fetched.ID, user.ID)
	}

	var updated models.User
	status := doJSON(t, ts, http.MethodPut, "/api/users/"+user.ID,
		map[string]string{"name": "Alice B", "email": "alice@example.com"}, &updated)
	if status != http.StatusOK {
		t.Fatalf("update user: status %d", status)
	}
	if updated.Name != "Alice B" || updated.Email != "alice@example.com" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	if status := doJSON(t, ts, http.MethodDelete, "/api/users/"+user.ID, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete user: status %d", status)
	}
	if status := doJSON(t, ts, http.MethodGet, "/api/users/"+user.ID, nil, nil); status != http.StatusNotFound {
		t.Errorf("get deleted user: status %d, want 404", status)
	}
}

func TestExpenseAndSettlementFlow(t *testing.T) {
	ts := newTestServer(t)
	groupID, users := setupGroup(t, ts, "A", "B", "C")
	a, b := users[0], users[1]

	var expense models.Expense
	status := doJSON(t, ts, http.MethodPost, "/api/expenses", map[string]any{
		"group_id":    groupID,
		"paid_by":     a.ID,
		"amount":      "30",
		"description": "Dinner",
		"shares": []map[string]any{
			{"user_id": users[0].ID, "share_amount": "10"},
			{"user_id": users[1].ID, "share_amount": "10"},
			{"user_id": users[2].ID, "share_amount": "10"},
		},
	}, &expense)
	if status != http.StatusCreated {
		t.Fatalf("create expense: status %d", status)
	}

	var balances []models.MemberBalance
	if status := doJSON(t, ts, http.MethodGet, "/api/balances/group/"+groupID, nil, &balances); status != http.StatusOK {
		t.Fatalf("get balances: status %d", status)
	}
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}
	for _, mb := range balances {
		want := "-10"
		if mb.User.ID == a.ID {
			want = "20"
		}
		if mb.Balance.String() != want {
			t.Errorf("balance[%s] = %s, want %s", mb.User.Name, mb.Balance, want)
		}
	}

	var plan []*models.Payment
	if status := doJSON(t, ts, http.MethodGet, "/api/balances/group/"+groupID+"/payments", nil, &plan); status != http.StatusOK {
		t.Fatalf("get settlement plan: status %d", status)
	}
	if len(plan) != 2 {
		t.Fatalf("got %d planned payments, want 2", len(plan))
	}
	for _, p := range plan {
		if p.ToUserID != a.ID {
			t.Errorf("planned payment to %s, want %s", p.ToUserID, a.ID)
		}
	}

	// Record and complete one of the planned payments.
	var payment models.Payment
	status = doJSON(t, ts, http.MethodPost, "/api/payments", map[string]any{
		"group_id":     groupID,
		"from_user_id": b.ID,
		"to_user_id":   a.ID,
		"amount":       "10",
	}, &payment)
	if status != http.StatusCreated {
		t.Fatalf("record payment: status %d", status)
	}
	if payment.Status != models.PaymentPending {
		t.Errorf("payment status = %s, want pending", payment.Status)
	}

	var completed models.Payment
	if status := doJSON(t, ts, http.MethodPost, "/api/payments/"+payment.ID+"/complete", nil, &completed); status != http.StatusOK {
		t.Fatalf("complete payment: status %d", status)
	}
	if completed.Status != models.PaymentCompleted {
		t.Errorf("payment status = %s, want completed", completed.Status)
	}

	if status := doJSON(t, ts, http.MethodGet, "/api/balances/group/"+groupID+"/payments", nil, &plan); status != http.StatusOK {
		t.Fatalf("get settlement plan: status %d", status)
	}
	if len(plan) != 1 {
		t.Fatalf("got %d planned payments after settlement, want 1", len(plan))
	}

	var summary models.GroupSummary
	if status := doJSON(t, ts, http.MethodGet, "/api/balances/group/"+groupID+"/summary", nil, &summary); status != http.StatusOK {
		t.Fatalf("get summary: status %d", status)
	}
	if summary.MemberCount != 3 || summary.ExpenseCount != 1 {
		t.Errorf("summary counts = %d members, %d expenses", summary.MemberCount, summary.ExpenseCount)
	}
	if summary.TotalAmount.String() != "30" {
		t.Errorf("summary total = %s, want 30", summary.TotalAmount)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	groupID, users := setupGroup(t, ts, "A", "B")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{
			name:   "unknown group balances",
			method: http.MethodGet,
			path:   "/api/balances/group/missing",
			want:   http.StatusNotFound,
		},
		{
			name:   "unknown user",
			method: http.MethodGet,
			path:   "/api/users/missing",
			want:   http.StatusNotFound,
		},
		{
			name:   "malformed expense body",
			method: http.MethodPost,
			path:   "/api/expenses",
			body:   map[string]any{"bogus": true},
			want:   http.StatusBadRequest,
		},
		{
			name:   "shares do not sum to amount",
			method: http.MethodPost,
			path:   "/api/expenses",
			body: map[string]any{
				"group_id":    groupID,
				"paid_by":     users[0].ID,
				"amount":      "30",
				"description": "Dinner",
				"shares": []map[string]any{
					{"user_id": users[0].ID, "share_amount": "10"},
					{"user_id": users[1].ID, "share_amount": "10"},
				},
			},
			want: http.StatusBadRequest,
		},
		{
			name:   "self payment",
			method: http.MethodPost,
			path:   "/api/payments",
			body: map[string]any{
				"group_id":     groupID,
				"from_user_id": users[0].ID,
				"to_user_id":   users[0].ID,
				"amount":       "5",
			},
			want: http.StatusBadRequest,
		},
		{
			name:   "complete unknown payment",
			method: http.MethodPost,
			path:   "/api/payments/missing/complete",
			want:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doJSON(t, ts, tt.method, tt.path, tt.body, nil); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	// Generate one request so counters exist.
	if status := doJSON(t, ts, http.MethodGet, "/api/health", nil, nil); status != http.StatusOK {
		t.Fatalf("health: status %d", status)
	}

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	if !bytes.Contains(raw, []byte("costcrew_http_requests_total")) {
		t.Error("metrics output missing request counter")
	}
}

func TestRemoveMember(t *testing.T) {
	ts := newTestServer(t)
	groupID, users := setupGroup(t, ts, "A", "B")

	path := fmt.Sprintf("/api/groups/%s/members/%s", groupID, users[1].ID)
	if status := doJSON(t, ts, http.MethodDelete, path, nil, nil); status != http.StatusNoContent {
		t.Fatalf("remove member: status %d", status)
	}

	var members []*models.User
	if status := doJSON(t, ts, http.MethodGet, "/api/groups/"+groupID+"/members", nil, &members); status != http.StatusOK {
		t.Fatalf("list members: status %d", status)
	}
	if len(members) != 1 || members[0].ID != users[0].ID {
		t.Errorf("unexpected members after removal: %+v", members)
	}
}
