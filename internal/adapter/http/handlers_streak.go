package adapthttp

import "net/http"

func (s *Server) handleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.streaks.Update(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Streak updated successfully", map[string]any{"current_streak": streak})
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	info, err := s.streaks.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Streak retrieved successfully", info)
}
