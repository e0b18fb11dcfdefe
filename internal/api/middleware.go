package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/arlen/cardbox/internal/errors"
	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const (
	learnerContextKey contextKey = "learner"
	learnerCookieName            = "learner_id"
	learnerHeaderName            = "X-Learner-ID"
)

func learnerFromContext(ctx context.Context) *models.Learner {
	if v := ctx.Value(learnerContextKey); v != nil {
		if l, ok := v.(*models.Learner); ok {
			return l
		}
	}
	return nil
}

// learnerMiddleware resolves the active learner from the X-Learner-ID header
// or the learner cookie and stores it in the request context. Requests with
// no resolvable learner get a 400.
func (s *Server) learnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		idStr := r.Header.Get(learnerHeaderName)
		if idStr == "" {
			cookie, err := r.Cookie(learnerCookieName)
			if err == nil {
				idStr = cookie.Value
			}
		}
		if idStr == "" {
			log.Debug("no learner header or cookie")
			handleError(w, r, errors.NewBadRequestError("no learner selected"))
			return
		}

		learnerID, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			log.Warn("invalid learner id %q, clearing cookie", idStr)
			clearLearnerCookie(w)
			handleError(w, r, errors.NewBadRequestError("invalid learner id"))
			return
		}

		learner, err := s.LearnerService.GetLearner(r.Context(), learnerID)
		if err != nil {
			clearLearnerCookie(w)
			handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), learnerContextKey, learner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clearLearnerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    learnerCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func setLearnerCookie(w http.ResponseWriter, id int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     learnerCookieName,
		Value:    strconv.FormatInt(id, 10),
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// generateRequestID creates a random request ID.
func generateRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		if r.RemoteAddr != "" {
			log = log.WithField("remote_addr", r.RemoteAddr)
		}

		ctx := logger.NewContext(r.Context(), log)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		log.Debug("request started")
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": duration.Milliseconds(),
		})

		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}
