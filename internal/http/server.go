// Package http exposes the expense ledger as a JSON API.
package http

import (
	"net/http"

	"github.com/costcrew/costcrew/internal/service"
	"github.com/costcrew/costcrew/internal/storage"
)

// Server routes API requests to the service layer.
type Server struct {
	users    *service.UserService
	groups   *service.GroupService
	expenses *service.ExpenseService
	ledger   *service.LedgerService
	payments *service.PaymentService
}

// NewServer builds the services over the given store and wires up routes.
func NewServer(store storage.Store) *Server {
	return &Server{
		users:    service.NewUserService(store),
		groups:   service.NewGroupService(store),
		expenses: service.NewExpenseService(store),
		ledger:   service.NewLedgerService(store),
		payments: service.NewPaymentService(store),
	}
}

// Handler returns the fully assembled HTTP handler: routes plus logging,
// CORS and metrics middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("GET /api/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", s.handleDeleteUser)

	mux.HandleFunc("GET /api/groups", s.handleListGroups)
	mux.HandleFunc("POST /api/groups", s.handleCreateGroup)
	mux.HandleFunc("GET /api/groups/{id}", s.handleGetGroup)
	mux.HandleFunc("PUT /api/groups/{id}", s.handleUpdateGroup)
	mux.HandleFunc("DELETE /api/groups/{id}", s.handleDeleteGroup)
	mux.HandleFunc("GET /api/groups/{id}/members", s.handleListMembers)
	mux.HandleFunc("POST /api/groups/{id}/members", s.handleAddMember)
	mux.HandleFunc("DELETE /api/groups/{id}/members/{userID}", s.handleRemoveMember)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses/group/{groupID}", s.handleListGroupExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/expenses/{id}/shares", s.handleListShares)

	mux.HandleFunc("GET /api/balances/group/{groupID}", s.handleGetBalances)
	mux.HandleFunc("GET /api/balances/group/{groupID}/payments", s.handleGetSettlementPlan)
	mux.HandleFunc("GET /api/balances/group/{groupID}/summary", s.handleGetGroupSummary)

	mux.HandleFunc("POST /api/payments", s.handleRecordPayment)
	mux.HandleFunc("GET /api/payments/group/{groupID}", s.handleListGroupPayments)
	mux.HandleFunc("POST /api/payments/{id}/complete", s.handleCompletePayment)

	mux.Handle("GET /metrics", metricsHandler())

	return loggingMiddleware(corsMiddleware(metricsMiddleware(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
