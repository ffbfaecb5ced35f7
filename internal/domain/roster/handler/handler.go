// Package handler implements the HTTP API over parsed duty schedules.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/farmaguardia/farmaguardia/internal/domain/export"
	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/repository"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
	"github.com/farmaguardia/farmaguardia/internal/domain/search"
)

const defaultSearchLimit = 20

// RosterHandler serves the region catalog and stored duty schedules.
type RosterHandler struct {
	repo    repository.RosterRepository
	search  *search.Index // Optional: nil disables /pharmacies/search
	logger  *slog.Logger
	nowFunc func() time.Time
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(repo repository.RosterRepository, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{
		repo:    repo,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// WithSearchIndex enables the pharmacy search endpoint.
func (h *RosterHandler) WithSearchIndex(idx *search.Index) *RosterHandler {
	h.search = idx
	return h
}

// WithClock overrides the time source.
func (h *RosterHandler) WithClock(now func() time.Time) *RosterHandler {
	h.nowFunc = now
	return h
}

// Routes registers the handler's endpoints on the given router.
func (h *RosterHandler) Routes(r chi.Router) {
	r.Get("/regions", h.ListRegions)
	r.Get("/regions/{regionID}/locations", h.ListLocations)
	r.Get("/locations/{locationID}/schedules", h.ListSchedules)
	r.Get("/locations/{locationID}/schedules.xlsx", h.ExportSchedules)
	r.Get("/locations/{locationID}/on-duty", h.OnDuty)
	r.Get("/pharmacies/search", h.SearchPharmacies)
}

// RegionResponse represents a region in API responses.
type RegionResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	SourceURL        string `json:"source_url"`
	Monthly          bool   `json:"monthly"`
	Has24hPharmacies bool   `json:"has_24h_pharmacies"`
	LocationCount    int    `json:"location_count"`
}

// LocationResponse represents a duty location.
type LocationResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ScheduleResponse represents one date's duty roster.
type ScheduleResponse struct {
	Date      string          `json:"date"`
	DayOfWeek string          `json:"day_of_week,omitempty"`
	Shifts    []ShiftResponse `json:"shifts"`
}

// ShiftResponse represents one duty span with its pharmacies.
type ShiftResponse struct {
	Label      string             `json:"label"`
	Hours      string             `json:"hours"`
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Pharmacies []PharmacyResponse `json:"pharmacies"`
}

// PharmacyResponse represents a pharmacy entry.
type PharmacyResponse struct {
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// ListRegions returns the region catalog.
func (h *RosterHandler) ListRegions(w http.ResponseWriter, _ *http.Request) {
	all := regions.All()
	out := make([]RegionResponse, 0, len(all))
	for _, r := range all {
		out = append(out, RegionResponse{
			ID:               string(r.ID),
			Name:             r.Name,
			SourceURL:        r.SourceURL,
			Monthly:          r.Monthly,
			Has24hPharmacies: r.Has24hPharmacies,
			LocationCount:    len(r.Locations),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListLocations returns a region's duty locations.
func (h *RosterHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	region, ok := regions.Get(regions.ID(chi.URLParam(r, "regionID")))
	if !ok {
		writeError(w, http.StatusNotFound, "region not found")
		return
	}

	out := make([]LocationResponse, 0, len(region.Locations))
	for _, loc := range region.Locations {
		out = append(out, LocationResponse{
			ID:    string(loc.ID),
			Name:  loc.Name,
			Icon:  loc.Icon,
			Notes: loc.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ListSchedules returns a location's stored schedules in date order.
func (h *RosterHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	locationID := schedule.LocationID(chi.URLParam(r, "locationID"))
	if _, ok := regions.LocationByID(locationID); !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	schedules, err := h.repo.LocationSchedules(r.Context(), locationID)
	if err != nil {
		h.logger.Error("failed to load schedules",
			slog.String("location", string(locationID)),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load schedules")
		return
	}

	out := make([]ScheduleResponse, 0, len(schedules))
	for _, ps := range schedules {
		out = append(out, scheduleResponse(ps))
	}
	writeJSON(w, http.StatusOK, out)
}

// ExportSchedules streams a location's schedules as an xlsx workbook.
func (h *RosterHandler) ExportSchedules(w http.ResponseWriter, r *http.Request) {
	locationID := schedule.LocationID(chi.URLParam(r, "locationID"))
	location, ok := regions.LocationByID(locationID)
	if !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	schedules, err := h.repo.LocationSchedules(r.Context(), locationID)
	if err != nil {
		h.logger.Error("failed to load schedules for export",
			slog.String("location", string(locationID)),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load schedules")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", string(locationID)+".xlsx"))
	if err := export.WriteSchedules(w, location, schedules); err != nil {
		h.logger.Error("failed to write workbook",
			slog.String("location", string(locationID)),
			slog.Any("error", err))
	}
}

// OnDuty returns the pharmacies on duty at a location at a given instant
// (query parameter "at", RFC 3339; defaults to now). Cross-midnight shifts
// are anchored to their start day.
func (h *RosterHandler) OnDuty(w http.ResponseWriter, r *http.Request) {
	locationID := schedule.LocationID(chi.URLParam(r, "locationID"))
	if _, ok := regions.LocationByID(locationID); !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	at := h.nowFunc()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'at' timestamp, want RFC 3339")
			return
		}
		at = parsed
	}

	schedules, err := h.repo.LocationSchedules(r.Context(), locationID)
	if err != nil {
		h.logger.Error("failed to load schedules",
			slog.String("location", string(locationID)),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to load schedules")
		return
	}

	var pharmacies []PharmacyResponse
	for _, ps := range schedules {
		for span, list := range ps.Shifts {
			if !span.Contains(ps.Date, at, schedule.AnchorStartDay) {
				continue
			}
			for _, p := range list {
				pharmacies = append(pharmacies, pharmacyResponse(p))
			}
		}
	}

	writeJSON(w, http.StatusOK, struct {
		At         string             `json:"at"`
		Pharmacies []PharmacyResponse `json:"pharmacies"`
	}{
		At:         at.Format(time.RFC3339),
		Pharmacies: pharmacies,
	})
}

// SearchPharmacies runs a fuzzy full-text query over indexed pharmacies.
func (h *RosterHandler) SearchPharmacies(w http.ResponseWriter, r *http.Request) {
	if h.search == nil {
		writeError(w, http.StatusNotFound, "search not available")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter 'q'")
		return
	}

	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid 'limit'")
			return
		}
		limit = n
	}

	entries, err := h.search.Search(r.Context(), q, limit)
	if err != nil {
		h.logger.Error("pharmacy search failed", slog.String("query", q), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func scheduleResponse(ps schedule.PharmacySchedule) ScheduleResponse {
	out := ScheduleResponse{
		Date:      ps.Date.Key(),
		DayOfWeek: ps.Date.DayOfWeek,
		Shifts:    make([]ShiftResponse, 0, len(ps.Shifts)),
	}
	for _, span := range ps.SpansInOrder() {
		shift := ShiftResponse{
			Label: span.DisplayName(),
			Hours: span.ShiftInfo(),
			Start: fmt.Sprintf("%02d:%02d", span.StartHour, span.StartMinute),
			End:   fmt.Sprintf("%02d:%02d", span.EndHour, span.EndMinute),
		}
		for _, p := range ps.Shifts[span] {
			shift.Pharmacies = append(shift.Pharmacies, pharmacyResponse(p))
		}
		out.Shifts = append(out.Shifts, shift)
	}
	return out
}

func pharmacyResponse(p schedule.Pharmacy) PharmacyResponse {
	return PharmacyResponse{
		Name:           p.Name,
		Address:        p.Address,
		Phone:          p.Phone,
		AdditionalInfo: p.AdditionalInfo,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
