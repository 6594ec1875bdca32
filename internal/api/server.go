// Package api exposes the booking engine over JSON HTTP for the
// presentation layer (web frontend, partner integrations).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/service"
)

// HTTPServer serves the booking API.
type HTTPServer struct {
	bookings  *service.BookingService
	schedules *service.ScheduleService
	apiKeys   map[string]bool
	log       *zerolog.Logger
	srv       *http.Server
}

func NewHTTPServer(bookings *service.BookingService, schedules *service.ScheduleService, apiKeys []string, logger *zerolog.Logger) *HTTPServer {
	keys := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys[k] = true
		}
	}
	return &HTTPServer{
		bookings:  bookings,
		schedules: schedules,
		apiKeys:   keys,
		log:       logger,
	}
}

// Handler builds the route table with API-key auth applied to every route.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/slots", s.requireKey(s.handleSlots))
	mux.HandleFunc("/api/v1/availability", s.requireKey(s.handleAvailability))
	mux.HandleFunc("/api/v1/bookings", s.requireKey(s.handleCreateBooking))
	mux.HandleFunc("/api/v1/bookings/cancel", s.requireKey(s.handleCancelBooking))
	mux.HandleFunc("/api/v1/bookings/complete", s.requireKey(s.handleCompleteBooking))
	mux.HandleFunc("/api/v1/schedule/working-day", s.requireKey(s.handleWorkingDay))
	mux.HandleFunc("/api/v1/schedule/blocks", s.requireKey(s.handleCreateBlock))
	mux.HandleFunc("/api/v1/schedule/blocks/", s.requireKey(s.handleDeleteBlock))
	mux.HandleFunc("/api/v1/policy", s.requireKey(s.handleUpdatePolicy))
	return mux
}

// ListenAndServe starts the API server on the given address and blocks until
// it stops.
func (s *HTTPServer) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("api server listening")

	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-api-key")
		if key == "" || !s.apiKeys[key] {
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		next(w, r)
	}
}

// decodeJSON parses a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// writeDomainError maps sentinel errors to HTTP statuses.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrPolicyDenied):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("internal api error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format; expected YYYY-MM-DD")
	}
	return date, nil
}
