package api

import (
	"net/http"
	"strconv"

	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/models"
)

type cardRequest struct {
	Term              string   `json:"term"`
	Definition        string   `json:"definition"`
	ReviewType        string   `json:"reviewType"`
	AcceptableAnswers []string `json:"acceptableAnswers"`
}

func (c cardRequest) draft() models.CardDraft {
	return models.CardDraft{
		Term:              c.Term,
		Definition:        c.Definition,
		AcceptableAnswers: c.AcceptableAnswers,
	}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	filter := models.CardFilter{
		LearnerID:    learner.ID,
		DueOnly:      r.URL.Query().Get("due") == "true",
		LearningOnly: r.URL.Query().Get("learning") == "true",
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	cards, err := s.CardService.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	card, err := s.CardService.CreateCard(r.Context(), learner.ID, req.draft(), req.ReviewType)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.GetCard(r.Context(), id, learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	card, err := s.CardService.UpdateCard(r.Context(), id, learner.ID, req.draft(), req.ReviewType)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())
	id, err := urlParamID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.CardService.DeleteCard(r.Context(), id, learner.ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importCardsRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleImportCards(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req importCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	cards, err := s.CardService.ImportCards(r.Context(), learner.ID, req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"cards": cards, "imported": len(cards)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	stats, err := s.CardService.DeckStats(r.Context(), learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
