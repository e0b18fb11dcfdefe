package api

import (
	"net/http"
	"strconv"

	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/srs"
)

func (s *Server) handleNextDue(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var excludeID int64
	if v := r.URL.Query().Get("exclude"); v != "" {
		excludeID, _ = strconv.ParseInt(v, 10, 64)
	}

	card, remaining, err := s.ReviewService.NextDue(r.Context(), learner.ID, excludeID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"card":      card,
		"remaining": remaining,
	})
}

func (s *Server) handleDueCount(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	count, err := s.ReviewService.CountDue(r.Context(), learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"due": count})
}

type ratingRequest struct {
	Rating      *int    `json:"rating"`
	TimeSeconds float64 `json:"timeSeconds"`
}

func (req ratingRequest) rating() (srs.Rating, error) {
	if req.Rating == nil {
		return 0, errors.NewValidationError("rating", "is required")
	}
	rating := srs.Rating(*req.Rating)
	if !rating.Valid() {
		return 0, errors.NewValidationError("rating", "must be between 0 and 3")
	}
	return rating, nil
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}
	rating, err := req.rating()
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.ReviewService.SubmitRating(r.Context(), id, learner.ID, rating, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

type answerRequest struct {
	Answer      string  `json:"answer"`
	TimeSeconds float64 `json:"timeSeconds"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := s.ReviewService.SubmitTypedAnswer(r.Context(), id, learner.ID, req.Answer, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleSubmitAnswerAI(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	result, err := s.ReviewService.SubmitTypedAnswerAI(r.Context(), id, learner.ID, req.Answer, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleOverrideRating(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req ratingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}
	rating, err := req.rating()
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.ReviewService.OverrideRating(r.Context(), id, learner.ID, rating)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}
