package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HeaderAPIKey carries the caller's key.
const HeaderAPIKey = "api-key"

type ctxKey struct{}

// requireAPIKey rejects calls without an api-key header and resolves the
// caller, registering unknown keys on first use.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderAPIKey)
		if key == "" {
			writeError(w, http.StatusForbidden, "API key missing")
			return
		}
		s.store.mu.Lock()
		id := s.store.userByKey(key).ID
		s.store.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// callerID returns the id resolved by requireAPIKey.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxKey{}).(int64)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.RequestURI()).
			Int("status", rec.status).
			Str("request_id", r.Header.Get("X-Request-Id")).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes the backend's error envelope with an HTTP status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"result":        false,
		"error_type":    "HTTPException",
		"error_message": msg,
	})
}

// writeFailure reports a handled failure the way the backend's generic
// exception handler does: status 200 with "result": false.
func writeFailure(w http.ResponseWriter, errType, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{
		"result":        false,
		"error_type":    errType,
		"error_message": msg,
	})
}
