package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arlen/cardbox/internal/errors"
)

type createLearnerRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListLearners(w http.ResponseWriter, r *http.Request) {
	learners, err := s.LearnerService.ListLearners(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"learners": learners})
}

func (s *Server) handleCreateLearner(w http.ResponseWriter, r *http.Request) {
	var req createLearnerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	learner, err := s.LearnerService.CreateLearner(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setLearnerCookie(w, learner.ID)
	writeJSON(w, r, http.StatusCreated, learner)
}

func (s *Server) handleSelectLearner(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	learner, err := s.LearnerService.GetLearner(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setLearnerCookie(w, learner.ID)
	writeJSON(w, r, http.StatusOK, learner)
}

func (s *Server) handleDeleteLearner(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.LearnerService.DeleteLearner(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	clearLearnerCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func urlParamID(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid " + name)
	}
	return id, nil
}
