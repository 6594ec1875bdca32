package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/database"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/service"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "api.db"), models.BookingPolicy{}, &logger)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	bookings := service.NewBookingService(db, db, nil, 30, &logger)
	schedules := service.NewScheduleService(db, db, 30, &logger)
	return NewHTTPServer(bookings, schedules, []string{testKey}, &logger)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body any, apiKey string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func setupWorkingDay(t *testing.T, handler http.Handler) {
	t.Helper()

	w := doRequest(t, handler, http.MethodPut, "/api/v1/schedule/working-day", WorkingDayRequest{
		ProviderID: "provider-1",
		Date:       "2030-06-03",
		IsWorking:  true,
		WorkStart:  "09:00",
		WorkEnd:    "13:00",
		Breaks:     []BreakRequest{{Start: "11:00", End: "11:30"}},
	}, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("setup working day: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	handler := newTestServer(t).Handler()

	tests := []struct {
		name           string
		apiKey         string
		expectedStatus int
	}{
		{"valid api key", testKey, http.StatusBadRequest}, // passes auth, fails validation
		{"missing api key", "", http.StatusUnauthorized},
		{"invalid api key", "wrong", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, handler, http.MethodGet, "/api/v1/slots", nil, tt.apiKey)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestSlotsEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	w := doRequest(t, handler, http.MethodGet,
		"/api/v1/slots?provider_id=provider-1&date=2030-06-03&duration=60", nil, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp SlotsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) == 0 {
		t.Fatal("expected slots, got none")
	}
	if resp.Slots[0].Start != "09:00" || !resp.Slots[0].Available {
		t.Errorf("expected 09:00 available, got %+v", resp.Slots[0])
	}

	// The 11:00 slot overlaps the break.
	for _, slot := range resp.Slots {
		if slot.Start == "11:00" {
			if slot.Available || slot.Reason != "break" {
				t.Errorf("expected 11:00 unavailable with reason break, got %+v", slot)
			}
		}
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	w := doRequest(t, handler, http.MethodGet,
		"/api/v1/availability?provider_id=provider-1&from=2030-06-03&days=3&duration=60", nil, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(resp.Days))
	}
	if !resp.Days[0].Working || resp.Days[0].Available == 0 {
		t.Errorf("expected 2030-06-03 bookable, got %+v", resp.Days[0])
	}
	// No schedule exists for the following days.
	if resp.Days[1].Working || resp.Days[2].Working {
		t.Errorf("expected days without a schedule to be closed, got %+v", resp.Days[1:])
	}

	w = doRequest(t, handler, http.MethodGet,
		"/api/v1/availability?provider_id=provider-1&from=2030-06-03&days=0&duration=60", nil, testKey)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero days, got %d", w.Code)
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	create := CreateBookingRequest{
		ClientID:   "client-1",
		ProviderID: "provider-1",
		ServiceID:  "haircut",
		Duration:   60,
		Date:       "2030-06-03",
		Start:      "09:00",
	}

	w := doRequest(t, handler, http.MethodPost, "/api/v1/bookings", create, testKey)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	var booking BookingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &booking); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if booking.Status != "confirmed" || booking.End != "10:00" {
		t.Errorf("unexpected booking: %+v", booking)
	}

	// Same slot again conflicts.
	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings", create, testKey)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on double booking, got %d: %s", w.Code, w.Body.String())
	}

	// Off-grid start is a validation error.
	offGrid := create
	offGrid.Start = "10:10"
	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings", offGrid, testKey)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for off-grid start, got %d", w.Code)
	}
}

func TestCancelBookingEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	w := doRequest(t, handler, http.MethodPost, "/api/v1/bookings", CreateBookingRequest{
		ClientID:   "client-1",
		ProviderID: "provider-1",
		ServiceID:  "haircut",
		Duration:   60,
		Date:       "2030-06-03",
		Start:      "09:00",
	}, testKey)
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d", w.Code)
	}
	var booking BookingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &booking); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings/cancel", CancelBookingRequest{
		BookingID: booking.ID,
		Role:      "provider",
		ActorID:   "provider-1",
		Reason:    "illness",
	}, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: status %d, body %s", w.Code, w.Body.String())
	}

	// Cancelled booking frees the slot.
	w = doRequest(t, handler, http.MethodGet,
		"/api/v1/slots?provider_id=provider-1&date=2030-06-03&duration=60", nil, testKey)
	var resp SlotsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Slots[0].Available {
		t.Errorf("expected 09:00 free after cancel, got %+v", resp.Slots[0])
	}

	// Unknown booking.
	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings/cancel", CancelBookingRequest{
		BookingID: "missing",
		Role:      "provider",
		ActorID:   "provider-1",
	}, testKey)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown booking, got %d", w.Code)
	}
}

func TestCompleteBookingEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	w := doRequest(t, handler, http.MethodPost, "/api/v1/bookings", CreateBookingRequest{
		ClientID:   "client-1",
		ProviderID: "provider-1",
		ServiceID:  "haircut",
		Duration:   60,
		Date:       "2030-06-03",
		Start:      "12:00",
	}, testKey)
	if w.Code != http.StatusCreated {
		t.Fatalf("create booking: status %d, body %s", w.Code, w.Body.String())
	}
	var booking BookingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &booking); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings/complete", CompleteBookingRequest{
		BookingID: booking.ID,
		ActorID:   "provider-1",
	}, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status %d, body %s", w.Code, w.Body.String())
	}

	// Completing twice is an invalid transition.
	w = doRequest(t, handler, http.MethodPost, "/api/v1/bookings/complete", CompleteBookingRequest{
		BookingID: booking.ID,
		ActorID:   "provider-1",
	}, testKey)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 on double complete, got %d", w.Code)
	}
}

func TestBlockEndpoints(t *testing.T) {
	handler := newTestServer(t).Handler()
	setupWorkingDay(t, handler)

	w := doRequest(t, handler, http.MethodPost, "/api/v1/schedule/blocks", BlockIntervalRequest{
		ProviderID: "provider-1",
		Date:       "2030-06-03",
		Start:      "09:00",
		End:        "10:00",
		Reason:     "training",
	}, testKey)
	if w.Code != http.StatusCreated {
		t.Fatalf("create block: status %d, body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// The blocked slot shows up in the grid.
	w = doRequest(t, handler, http.MethodGet,
		"/api/v1/slots?provider_id=provider-1&date=2030-06-03&duration=60", nil, testKey)
	var resp SlotsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Slots[0].Available || resp.Slots[0].Reason != "blocked" {
		t.Errorf("expected 09:00 blocked, got %+v", resp.Slots[0])
	}

	w = doRequest(t, handler, http.MethodDelete, "/api/v1/schedule/blocks/"+created.ID, nil, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("delete block: status %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, handler, http.MethodDelete, "/api/v1/schedule/blocks/"+created.ID, nil, testKey)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting removed block, got %d", w.Code)
	}
}

func TestPolicyEndpoint(t *testing.T) {
	handler := newTestServer(t).Handler()

	w := doRequest(t, handler, http.MethodPut, "/api/v1/policy", PolicyRequest{
		ProviderID:                  "provider-1",
		MinAdvanceMinutes:           120,
		CancellationDeadlineMinutes: 240,
	}, testKey)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(t, handler, http.MethodPut, "/api/v1/policy", PolicyRequest{
		ProviderID:        "provider-1",
		MinAdvanceMinutes: -5,
	}, testKey)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative minutes, got %d", w.Code)
	}
}
