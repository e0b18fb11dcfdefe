package api

import (
	"encoding/json"
	"net/http"

	"github.com/arlen/cardbox/internal/db"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/services"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	DB              *db.DB
	LearnerService  services.LearnerService
	CardService     services.CardService
	ReviewService   services.ReviewService
	GenerateService services.GenerateService
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
