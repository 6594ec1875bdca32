package api

import (
	"net/http"
	"strconv"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/metrics"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// SlotResponse is one entry in the slot grid with times rendered as "HH:MM".
type SlotResponse struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// SlotsResponse is the response for GET /api/v1/slots.
type SlotsResponse struct {
	ProviderID string         `json:"provider_id"`
	ResourceID string         `json:"resource_id,omitempty"`
	Date       string         `json:"date"`
	Slots      []SlotResponse `json:"slots"`
}

// handleSlots returns the availability grid for one provider/resource/date.
// GET /api/v1/slots?provider_id=&resource_id=&date=YYYY-MM-DD&duration=60
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	providerID := q.Get("provider_id")
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	date, err := parseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
		return
	}

	resourceID := q.Get("resource_id")
	slots, err := s.bookings.ListAvailableSlots(r.Context(), providerID, resourceID, date, duration)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := SlotsResponse{
		ProviderID: providerID,
		ResourceID: resourceID,
		Date:       date.Format("2006-01-02"),
		Slots:      make([]SlotResponse, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, SlotResponse{
			Start:     models.FormatMinute(slot.Start),
			End:       models.FormatMinute(slot.End),
			Available: slot.Available,
			Reason:    string(slot.Reason),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// DayAvailabilityResponse summarizes one date in the calendar view.
type DayAvailabilityResponse struct {
	Date      string         `json:"date"`
	Working   bool           `json:"working"`
	Available int            `json:"available"`
	Slots     []SlotResponse `json:"slots"`
}

// AvailabilityResponse is the response for GET /api/v1/availability.
type AvailabilityResponse struct {
	ProviderID string                    `json:"provider_id"`
	ResourceID string                    `json:"resource_id,omitempty"`
	Days       []DayAvailabilityResponse `json:"days"`
}

// handleAvailability returns the slot grid for a run of consecutive dates.
// GET /api/v1/availability?provider_id=&resource_id=&from=YYYY-MM-DD&days=14&duration=60
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	providerID := q.Get("provider_id")
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	days, err := strconv.Atoi(q.Get("days"))
	if err != nil || days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be a positive number")
		return
	}

	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
		return
	}

	resourceID := q.Get("resource_id")
	availability, err := s.bookings.ListAvailability(r.Context(), providerID, resourceID, from, days, duration)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp := AvailabilityResponse{
		ProviderID: providerID,
		ResourceID: resourceID,
		Days:       make([]DayAvailabilityResponse, 0, len(availability)),
	}
	for _, day := range availability {
		entry := DayAvailabilityResponse{
			Date:      day.Date.Format("2006-01-02"),
			Working:   day.Working,
			Available: day.Available,
			Slots:     make([]SlotResponse, 0, len(day.Slots)),
		}
		for _, slot := range day.Slots {
			entry.Slots = append(entry.Slots, SlotResponse{
				Start:     models.FormatMinute(slot.Start),
				End:       models.FormatMinute(slot.End),
				Available: slot.Available,
				Reason:    string(slot.Reason),
			})
		}
		resp.Days = append(resp.Days, entry)
	}
	writeJSON(w, http.StatusOK, resp)
}
