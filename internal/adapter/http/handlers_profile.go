package adapthttp

import (
	"net/http"

	"macrolens/internal/app"
	"macrolens/internal/domain"
)

// userID returns the authenticated caller's id. Only valid behind
// authMiddleware.
func userID(r *http.Request) string {
	id, _ := identityFrom(r.Context())
	return id.UserID
}

func profileData(p *domain.UserProfile) map[string]any {
	return map[string]any{
		"user_id":       p.UserID,
		"profile":       p,
		"daily_targets": p.Targets(),
	}
}

func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	writeOK(w, http.StatusOK, "Token is valid", map[string]any{"user": id})
}

func (s *Server) handleCalculateTargets(w http.ResponseWriter, r *http.Request) {
	var body domain.TargetsInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	targets, err := s.profiles.Preview(body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Daily targets calculated", map[string]any{"daily_targets": targets})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var body app.ProfileInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	p, created, err := s.profiles.Save(r.Context(), userID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	if created {
		writeOK(w, http.StatusCreated, "Profile created successfully", profileData(p))
		return
	}
	writeOK(w, http.StatusOK, "Profile updated successfully", profileData(p))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Get(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Profile retrieved successfully", profileData(p))
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.Recalculate(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Daily targets recalculated successfully", profileData(p))
}
