package adapthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"macrolens/internal/app"
	"macrolens/internal/domain"
)

// multipartOverhead leaves room for form boundaries and headers around the photo.
const multipartOverhead = 1 << 20

var (
	errNoPhoto     = domain.Invalid("No photo provided", "Please upload a photo")
	errMissingFood = domain.Invalid("Missing food_id", "Please provide a valid food_id")
)

func (s *Server) handleConsumed(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.foods.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	up, err := readPhoto(r, maxBytes)
	if err != nil {
		observeAnalysis(err)
		writeError(w, err)
		return
	}
	res, err := s.foods.AnalyzeUpload(r.Context(), userID(r), up)
	observeAnalysis(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "Photo uploaded, analyzed, and saved successfully", res)
}

func readPhoto(r *http.Request, maxBytes int64) (app.PhotoUpload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return app.PhotoUpload{}, domain.Invalid("File too large", fmt.Sprintf("Maximum file size is %dMB", maxBytes>>20))
		}
		return app.PhotoUpload{}, errNoPhoto
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		return app.PhotoUpload{}, errNoPhoto
	}
	defer file.Close() //nolint:errcheck

	// One extra byte lets the service detect oversize files.
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return app.PhotoUpload{}, domain.Invalid("Invalid upload", err.Error())
	}
	return app.PhotoUpload{Filename: header.Filename, Data: data}, nil
}

func (s *Server) handleManualConsumed(w http.ResponseWriter, r *http.Request) {
	var body app.ManualFood
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.foods.AddManual(r.Context(), userID(r), body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, "Food record created successfully", rec)
}

func (s *Server) handleGetConsumed(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, errMissingFood)
		return
	}
	rec, err := s.foods.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Food record retrieved successfully", rec)
}

func (s *Server) handleEditWithAI(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FoodID          int64  `json:"food_id"`
		TextDescription string `json:"text_description"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.FoodID <= 0 {
		writeError(w, errMissingFood)
		return
	}
	res, err := s.foods.EditWithAI(r.Context(), userID(r), body.FoodID, body.TextDescription)
	observeAnalysis(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Food record updated successfully with improved analysis", res)
}

func (s *Server) handleEditConsumed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FoodID int64 `json:"food_id"`
		app.FoodEdit
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.FoodID <= 0 {
		writeError(w, errMissingFood)
		return
	}
	rec, fields, err := s.foods.Edit(r.Context(), userID(r), body.FoodID, body.FoodEdit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Food record updated successfully", map[string]any{
		"updated_fields": fields,
		"record":         rec,
	})
}

func (s *Server) handleDeleteConsumed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FoodID int64 `json:"food_id"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.FoodID <= 0 {
		writeError(w, errMissingFood)
		return
	}
	res, err := s.foods.Delete(r.Context(), userID(r), body.FoodID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Food record deleted successfully", res)
}

func (s *Server) handleRecentlyEaten(w http.ResponseWriter, r *http.Request) {
	day := dayQuery(r)
	limit := intQuery(r, "limit", app.DefaultRecentLimit)
	offset := intQuery(r, "offset", 0)
	res, err := s.foods.RecentForDay(r.Context(), userID(r), day, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Recently eaten foods retrieved successfully", map[string]any{
		"date":   res.Date,
		"foods":  res.Foods,
		"count":  res.Count,
		"limit":  app.ClampLimit(limit, app.DefaultRecentLimit, app.MaxListLimit),
		"offset": offset,
	})
}

func (s *Server) handleFullHistory(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", app.DefaultHistoryLimit)
	offset := intQuery(r, "offset", 0)
	foods, err := s.foods.History(r.Context(), userID(r), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Food history retrieved successfully", map[string]any{
		"foods":  foods,
		"count":  len(foods),
		"limit":  app.ClampLimit(limit, app.DefaultHistoryLimit, app.MaxListLimit),
		"offset": offset,
	})
}

func (s *Server) handleWeeklyRecentlyEaten(w http.ResponseWriter, r *http.Request) {
	dailyLimit := intQuery(r, "daily_limit", app.DefaultRecentLimit)
	res, err := s.foods.WeeklyRecent(r.Context(), userID(r), dailyLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "Weekly recently eaten foods retrieved successfully", res)
}
