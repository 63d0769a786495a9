package adapthttp

import "net/http"

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	day := dayQuery(r)
	res, err := s.summary.Daily(r.Context(), userID(r), day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Daily nutrition summary retrieved successfully", map[string]any{
		"date":    day,
		"summary": res,
	})
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	res, err := s.summary.Weekly(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Weekly nutrition summary retrieved successfully", res)
}
