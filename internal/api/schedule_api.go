package api

import (
	"net/http"
	"strings"

	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/metrics"
	"github.com/isden7409-pixel/beautyfind-1-sub001/internal/models"
)

// BreakRequest is one break inside a working day, times as "HH:MM".
type BreakRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label,omitempty"`
}

// WorkingDayRequest is the request body for PUT /api/v1/schedule/working-day.
type WorkingDayRequest struct {
	ProviderID string         `json:"provider_id"`
	ResourceID string         `json:"resource_id,omitempty"`
	Date       string         `json:"date"` // YYYY-MM-DD
	IsWorking  bool           `json:"is_working"`
	WorkStart  string         `json:"work_start,omitempty"` // HH:MM
	WorkEnd    string         `json:"work_end,omitempty"`   // HH:MM
	Breaks     []BreakRequest `json:"breaks,omitempty"`
}

// handleWorkingDay replaces one date's schedule wholesale.
// PUT /api/v1/schedule/working-day
func (s *HTTPServer) handleWorkingDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("working_day")
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req WorkingDayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProviderID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	day := &models.WorkingDay{
		ProviderID: req.ProviderID,
		ResourceID: req.ResourceID,
		Date:       date,
		IsWorking:  req.IsWorking,
	}
	if req.IsWorking {
		if day.WorkStart, err = models.ParseMinute(req.WorkStart); err != nil {
			writeError(w, http.StatusBadRequest, "invalid work_start; expected HH:MM")
			return
		}
		if day.WorkEnd, err = models.ParseMinute(req.WorkEnd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid work_end; expected HH:MM")
			return
		}
		for _, br := range req.Breaks {
			b := models.Break{Label: br.Label}
			if b.Start, err = models.ParseMinute(br.Start); err != nil {
				writeError(w, http.StatusBadRequest, "invalid break start; expected HH:MM")
				return
			}
			if b.End, err = models.ParseMinute(br.End); err != nil {
				writeError(w, http.StatusBadRequest, "invalid break end; expected HH:MM")
				return
			}
			day.Breaks = append(day.Breaks, b)
		}
	}

	if err := s.schedules.UpsertWorkingDay(r.Context(), day); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// BlockIntervalRequest is the request body for POST /api/v1/schedule/blocks.
type BlockIntervalRequest struct {
	ProviderID string `json:"provider_id"`
	ResourceID string `json:"resource_id,omitempty"`
	Date       string `json:"date"`  // YYYY-MM-DD
	Start      string `json:"start"` // HH:MM
	End        string `json:"end"`   // HH:MM
	Reason     string `json:"reason,omitempty"`
}

// handleCreateBlock blocks an interval administratively.
// POST /api/v1/schedule/blocks
func (s *HTTPServer) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_block")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req BlockIntervalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProviderID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	block := &models.BlockedInterval{
		ProviderID: req.ProviderID,
		ResourceID: req.ResourceID,
		Date:       date,
		Reason:     req.Reason,
	}
	if block.Start, err = models.ParseMinute(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start; expected HH:MM")
		return
	}
	if block.End, err = models.ParseMinute(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end; expected HH:MM")
		return
	}

	created, err := s.schedules.BlockInterval(r.Context(), block)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": created.ID})
}

// handleDeleteBlock removes a blocked interval.
// DELETE /api/v1/schedule/blocks/{id}
func (s *HTTPServer) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("delete_block")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/schedule/blocks/"
	id := strings.TrimPrefix(r.URL.Path, prefix)
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "block id is required")
		return
	}

	if err := s.schedules.UnblockInterval(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// PolicyRequest is the request body for PUT /api/v1/policy.
type PolicyRequest struct {
	ProviderID                  string `json:"provider_id"`
	MinAdvanceMinutes           int    `json:"min_advance_minutes"`
	CancellationDeadlineMinutes int    `json:"cancellation_deadline_minutes"`
}

// handleUpdatePolicy sets a provider's booking policy.
// PUT /api/v1/policy
func (s *HTTPServer) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("update_policy")
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req PolicyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ProviderID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	err := s.schedules.UpdatePolicy(r.Context(), &models.BookingPolicy{
		ProviderID:                  req.ProviderID,
		MinAdvanceMinutes:           req.MinAdvanceMinutes,
		CancellationDeadlineMinutes: req.CancellationDeadlineMinutes,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
