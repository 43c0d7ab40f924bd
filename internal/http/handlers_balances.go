package http

import "net/http"

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.ledger.GetBalances(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleGetSettlementPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.ledger.GetSettlementPlan(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGetGroupSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.ledger.GetGroupSummary(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
