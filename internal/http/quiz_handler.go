package http

import (
	"net/http"

	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/domain"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/quiz"
	"github.com/smoothdescentinc/SmoothDescent-sub000/internal/tracking"
)

type QuizHandler struct {
	catalog Catalog
	tracker Tracker
}

func NewQuizHandler(catalog Catalog, tracker Tracker) *QuizHandler {
	return &QuizHandler{
		catalog: catalog,
		tracker: tracker,
	}
}

// QuizRequestDTO takes either the named answers or Answers in question
// order (phase, pain, commitment).
type QuizRequestDTO struct {
	quiz.Answers
	Sequence []string `json:"answers,omitempty"`
}

type QuizResponse struct {
	quiz.Result
	Product *domain.Product `json:"product,omitempty"`
}

func (h *QuizHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req QuizRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	byIndex := map[int]string{0: req.Phase, 1: req.Pain, 2: req.Commitment}
	if len(req.Sequence) > 0 {
		byIndex = make(map[int]string, len(req.Sequence))
		for i, v := range req.Sequence {
			byIndex[i] = v
		}
	}
	answers, err := quiz.AnswersFromSequence(byIndex)
	if err != nil {
		respondError(w, http.StatusBadRequest, "incomplete_answers", "please answer every question")
		return
	}

	result := quiz.Resolve(answers)
	resp := QuizResponse{Result: result}
	if p, ok := h.catalog.Product(r.Context(), result.ProductID); ok {
		resp.Product = &p
	}

	h.tracker.Track(r.Context(), getVisitorID(r.Context()), tracking.EventQuizComplete, tracking.Params{
		ContentIDs:  []string{result.ProductID},
		ContentName: result.Bundle,
	})
	respondJSON(w, http.StatusOK, resp)
}
