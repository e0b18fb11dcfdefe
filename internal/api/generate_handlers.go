package api

import (
	"net/http"

	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/logger"
)

type generateRequest struct {
	Text string `json:"text"`
}

// handleGenerate queues background AI card generation and returns 202.
// Generated cards show up in the learner's deck as the job completes.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid request body"))
		return
	}

	if err := s.GenerateService.GenerateFromText(r.Context(), learner.ID, req.Text); err != nil {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("card generation queued for learner %d", learner.ID)
	writeJSON(w, r, http.StatusAccepted, map[string]any{
		"status": "queued",
		"queued": s.GenerateService.QueueSize(),
	})
}
