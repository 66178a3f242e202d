package api

import "net/http"

// handleNews serves aggregated headlines. Upstream failures are absorbed
// by the aggregator, so the status is always 200.
func (s *Server) handleNews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, s.aggregator.GetHeadlines(r.Context()))
	}
}

func (s *Server) handleTrends() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, s.aggregator.GetTrends(r.Context()))
	}
}
