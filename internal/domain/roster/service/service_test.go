package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/parser"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

type stubStrategy struct {
	result schedule.Map
}

func (s stubStrategy) Parse(_ []pdftext.Page) schedule.Map {
	return s.result
}

type recordingRepo struct {
	region regions.ID
	stored schedule.Map
	err    error
}

func (r *recordingRepo) ReplaceRegionSchedules(_ context.Context, regionID regions.ID, schedules schedule.Map) error {
	r.region = regionID
	r.stored = schedules
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stubResult() schedule.Map {
	ps := schedule.NewPharmacySchedule(schedule.NewDutyDate(15, 7, 2025))
	ps.Add(schedule.FullDay, schedule.NewPharmacy("FARMACIA TEST", "C. Falsa 123", ""))
	return schedule.Map{"segovia-capital": {ps}}
}

func TestRosterService_ParsePages(t *testing.T) {
	registry := parser.Registry{regions.Capital: stubStrategy{result: stubResult()}}
	svc := NewRosterService(registry, discardLogger())

	result, err := svc.ParsePages(context.Background(), regions.Capital, []pdftext.Page{{Number: 1}})
	require.NoError(t, err)
	require.Len(t, result["segovia-capital"], 1)
}

func TestRosterService_ParsePages_UnknownRegion(t *testing.T) {
	svc := NewRosterService(parser.Registry{}, discardLogger())

	_, err := svc.ParsePages(context.Background(), regions.ID("nowhere"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestRosterService_ParseFile_MissingFile(t *testing.T) {
	registry := parser.Registry{regions.Capital: stubStrategy{}}
	svc := NewRosterService(registry, discardLogger())

	_, err := svc.ParseFile(context.Background(), regions.Capital, "testdata/does-not-exist.pdf")
	require.Error(t, err)
}

func TestRosterService_Store(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewRosterService(parser.Registry{}, discardLogger()).WithRepository(repo)
	result := stubResult()

	require.NoError(t, svc.Store(context.Background(), regions.Capital, result))
	assert.Equal(t, regions.Capital, repo.region)
	assert.Equal(t, result, repo.stored)
}

func TestRosterService_Store_RepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("connection refused")}
	svc := NewRosterService(parser.Registry{}, discardLogger()).WithRepository(repo)

	err := svc.Store(context.Background(), regions.Capital, stubResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRosterService_Store_NoRepository(t *testing.T) {
	svc := NewRosterService(parser.Registry{}, discardLogger())

	err := svc.Store(context.Background(), regions.Capital, stubResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no repository")
}
