package api

import (
	"net/http"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/metrics"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/service"
)

// CreateBookingRequest is the request body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name,omitempty"`
	ProviderID  string `json:"provider_id"`
	ResourceID  string `json:"resource_id,omitempty"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name,omitempty"`
	Duration    int    `json:"duration"`
	Price       int64  `json:"price,omitempty"`
	Date        string `json:"date"`  // YYYY-MM-DD
	Start       string `json:"start"` // HH:MM
	ClientNote  string `json:"client_note,omitempty"`
}

// BookingResponse renders a booking with boundary-format times.
type BookingResponse struct {
	ID           string `json:"id"`
	ClientID     string `json:"client_id"`
	ProviderID   string `json:"provider_id"`
	ResourceID   string `json:"resource_id,omitempty"`
	ServiceID    string `json:"service_id"`
	ServiceName  string `json:"service_name,omitempty"`
	Date         string `json:"date"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Price        int64  `json:"price,omitempty"`
	Status       string `json:"status"`
	CancelReason string `json:"cancel_reason,omitempty"`
}

func toBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ClientID:     b.ClientID,
		ProviderID:   b.ProviderID,
		ResourceID:   b.ResourceID,
		ServiceID:    b.ServiceID,
		ServiceName:  b.ServiceName,
		Date:         b.Date.Format("2006-01-02"),
		Start:        models.FormatMinute(b.Start),
		End:          models.FormatMinute(b.End),
		Price:        b.Price,
		Status:       string(b.Status),
		CancelReason: b.CancelReason,
	}
}

// handleCreateBooking commits a booking for an available slot.
// POST /api/v1/bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := models.ParseMinute(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start time; expected HH:MM")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), service.CreateBookingRequest{
		ClientID:        req.ClientID,
		ClientName:      req.ClientName,
		ProviderID:      req.ProviderID,
		ResourceID:      req.ResourceID,
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		DurationMinutes: req.Duration,
		Price:           req.Price,
		Date:            date,
		Start:           start,
		ClientNote:      req.ClientNote,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

// CancelBookingRequest is the request body for POST /api/v1/bookings/cancel.
type CancelBookingRequest struct {
	BookingID string `json:"booking_id"`
	Role      string `json:"role"` // "client" or "provider"
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// handleCancelBooking cancels a confirmed booking.
// POST /api/v1/bookings/cancel
func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cancel_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CancelBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	role := models.ActorRole(req.Role)
	if role != models.RoleClient && role != models.RoleProvider {
		writeError(w, http.StatusBadRequest, "role must be client or provider")
		return
	}

	if err := s.bookings.CancelBooking(r.Context(), req.BookingID, role, req.ActorID, req.ActorName, req.Reason); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// CompleteBookingRequest is the request body for POST /api/v1/bookings/complete.
type CompleteBookingRequest struct {
	BookingID string `json:"booking_id"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name,omitempty"`
}

// handleCompleteBooking marks a confirmed booking as completed.
// POST /api/v1/bookings/complete
func (s *HTTPServer) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("complete_booking")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req CompleteBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookingID == "" {
		writeError(w, http.StatusBadRequest, "booking_id is required")
		return
	}

	if err := s.bookings.CompleteBooking(r.Context(), req.BookingID, req.ActorID, req.ActorName); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
