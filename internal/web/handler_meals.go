package web

import (
	"encoding/json"
	"net/http"

	"github.com/vbonduro/mealcam/internal/domain"
)

// maxMealBodySize caps manual meal submissions.
const maxMealBodySize = 64 * 1024

// mealRequest is a manually entered meal. Calories may carry a fraction; it
// is rounded like a recognizer estimate.
type mealRequest struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("date") == "" {
		writeJSON(w, http.StatusOK, s.service.ListMeals(r.Context()), s.logger)
		return
	}

	day, err := s.dayParam(r)
	if err != nil {
		s.writeError(w, "list meals", err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.MealsByDate(r.Context(), day), s.logger)
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	var req mealRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMealBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, "add meal", &domain.ValidationError{Field: "body", Msg: err.Error()})
		return
	}

	entry, err := s.service.AddMeal(r.Context(), domain.MealDraft{
		Name:     req.Name,
		Calories: domain.RoundCalories(req.Calories),
		Proteins: req.Proteins,
		Fats:     req.Fats,
		Carbs:    req.Carbs,
	})
	if err != nil {
		s.writeError(w, "add meal", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry, s.logger)
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	removed, err := s.service.DeleteMeal(r.Context(), id)
	if err != nil {
		s.writeError(w, "delete meal", err)
		return
	}
	if !removed {
		s.writeError(w, "delete meal", domain.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearHistory(r.Context()); err != nil {
		s.writeError(w, "clear history", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
