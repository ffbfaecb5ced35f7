package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
	"github.com/farmaguardia/farmaguardia/internal/domain/search"
)

type stubRepo struct {
	schedules map[schedule.LocationID][]schedule.PharmacySchedule
	err       error
}

func (s *stubRepo) ReplaceRegionSchedules(_ context.Context, _ regions.ID, _ schedule.Map) error {
	return nil
}

func (s *stubRepo) LocationSchedules(_ context.Context, id schedule.LocationID) ([]schedule.PharmacySchedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.schedules[id], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRouter(h *RosterHandler) *chi.Mux {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func capitalSchedules() []schedule.PharmacySchedule {
	ps := schedule.NewPharmacySchedule(schedule.NewDutyDate(15, 7, 2025))
	ps.Add(schedule.CapitalDay, schedule.NewPharmacy("FARMACIA DÍA", "C. Real 1", "Tfno: 921 111111"))
	ps.Add(schedule.CapitalNight, schedule.NewPharmacy("FARMACIA NOCHE", "C. Real 2", "Tfno: 921 222222"))
	return []schedule.PharmacySchedule{ps}
}

func TestRosterHandler_ListRegions(t *testing.T) {
	h := NewRosterHandler(&stubRepo{}, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []RegionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)
	assert.Equal(t, "segovia-capital", out[0].ID)
	assert.True(t, out[0].Has24hPharmacies)
}

func TestRosterHandler_ListLocations(t *testing.T) {
	h := NewRosterHandler(&stubRepo{}, testLogger())
	router := testRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions/segovia-rural/locations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out []LocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out, 8)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regions/atlantis/locations", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterHandler_ListSchedules(t *testing.T) {
	repo := &stubRepo{schedules: map[schedule.LocationID][]schedule.PharmacySchedule{
		"segovia-capital": capitalSchedules(),
	}}
	h := NewRosterHandler(repo, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/segovia-capital/schedules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "2025-07-15", out[0].Date)
	require.Len(t, out[0].Shifts, 2)
	// Day shift starts earlier: it comes first.
	assert.Equal(t, "10:15", out[0].Shifts[0].Start)
	assert.Equal(t, "FARMACIA DÍA", out[0].Shifts[0].Pharmacies[0].Name)
	assert.Equal(t, "Guardia nocturna", out[0].Shifts[1].Label)
}

func TestRosterHandler_ListSchedules_UnknownLocation(t *testing.T) {
	h := NewRosterHandler(&stubRepo{}, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/atlantis/schedules", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterHandler_ListSchedules_RepoError(t *testing.T) {
	h := NewRosterHandler(&stubRepo{err: errors.New("boom")}, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/segovia-capital/schedules", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRosterHandler_OnDuty(t *testing.T) {
	repo := &stubRepo{schedules: map[schedule.LocationID][]schedule.PharmacySchedule{
		"segovia-capital": capitalSchedules(),
	}}
	h := NewRosterHandler(repo, testLogger())
	router := testRouter(h)

	var out struct {
		Pharmacies []PharmacyResponse `json:"pharmacies"`
	}

	// 02:00 the following night: only the cross-midnight shift anchored to
	// its start day covers it.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/locations/segovia-capital/on-duty?at=2025-07-16T02:00:00Z", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Pharmacies, 1)
	assert.Equal(t, "FARMACIA NOCHE", out.Pharmacies[0].Name)

	// Mid-afternoon on the duty date: only the day shift.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/locations/segovia-capital/on-duty?at=2025-07-15T15:00:00Z", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Pharmacies, 1)
	assert.Equal(t, "FARMACIA DÍA", out.Pharmacies[0].Name)
}

func TestRosterHandler_OnDuty_BadTimestamp(t *testing.T) {
	h := NewRosterHandler(&stubRepo{}, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/locations/segovia-capital/on-duty?at=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRosterHandler_SearchPharmacies(t *testing.T) {
	idx, err := search.NewIndex(testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	ps := schedule.NewPharmacySchedule(schedule.NewDutyDate(15, 7, 2025))
	ps.Add(schedule.FullDay, schedule.NewPharmacy("FARMACIA MARTÍN GILARRANZ", "Av. Hontanilla 12", ""))
	require.NoError(t, idx.IndexRegion(regions.ElEspinar, schedule.Map{"el-espinar": {ps}}))

	h := NewRosterHandler(&stubRepo{}, testLogger()).WithSearchIndex(idx)
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pharmacies/search?q=gilarranz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out []search.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out)
	assert.Equal(t, "FARMACIA MARTÍN GILARRANZ", out[0].Name)
}

func TestRosterHandler_SearchPharmacies_Disabled(t *testing.T) {
	h := NewRosterHandler(&stubRepo{}, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pharmacies/search?q=x", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRosterHandler_ExportSchedules(t *testing.T) {
	repo := &stubRepo{schedules: map[schedule.LocationID][]schedule.PharmacySchedule{
		"segovia-capital": capitalSchedules(),
	}}
	h := NewRosterHandler(repo, testLogger())
	rec := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/locations/segovia-capital/schedules.xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotZero(t, rec.Body.Len())
}
