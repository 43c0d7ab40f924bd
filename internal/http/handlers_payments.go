package http

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type recordPaymentRequest struct {
	GroupID    string          `json:"group_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	payment, err := s.payments.RecordPayment(r.Context(),
		req.GroupID, req.FromUserID, req.ToUserID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleListGroupPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.payments.ListGroupPayments(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) handleCompletePayment(w http.ResponseWriter, r *http.Request) {
	payment, err := s.payments.CompletePayment(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
