package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFetcher struct {
	err   error
	calls []regions.ID
}

func (f *stubFetcher) FetchRegion(_ context.Context, region regions.Region, force bool) (string, error) {
	if !force {
		return "", errors.New("refresh must bypass the cache")
	}
	f.calls = append(f.calls, region.ID)
	return "/tmp/" + string(region.ID) + ".pdf", f.err
}

type stubParser struct {
	result schedule.Map
	err    error
	stored []regions.ID
}

func (p *stubParser) ParseAndStore(_ context.Context, regionID regions.ID, _ string) (schedule.Map, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.stored = append(p.stored, regionID)
	return p.result, nil
}

type stubNotifier struct {
	updated  int
	failures int
}

func (n *stubNotifier) NotifyRosterUpdated(_ context.Context, _ []string, _ string, _ int) error {
	n.updated++
	return nil
}

func (n *stubNotifier) NotifyRefreshFailure(_ context.Context, _ []string, _ string) error {
	n.failures++
	return nil
}

type stubIndexer struct {
	indexed []regions.ID
}

func (i *stubIndexer) IndexRegion(regionID regions.ID, _ schedule.Map) error {
	i.indexed = append(i.indexed, regionID)
	return nil
}

func parsedMap() schedule.Map {
	ps := schedule.NewPharmacySchedule(schedule.NewDutyDate(15, 7, 2025))
	ps.Add(schedule.FullDay, schedule.NewPharmacy("FARMACIA TEST", "", ""))
	return schedule.Map{"el-espinar": {ps}}
}

func TestScheduler_RefreshAllRegions(t *testing.T) {
	fetcher := &stubFetcher{}
	parser := &stubParser{result: parsedMap()}
	notifier := &stubNotifier{}
	indexer := &stubIndexer{}

	s := NewScheduler(fetcher, parser, testLogger()).
		WithIndexer(indexer).
		WithNotifier(notifier, []string{"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]"})
	s.refreshAllRegions()

	total := len(regions.All())
	assert.Len(t, fetcher.calls, total)
	assert.Len(t, parser.stored, total)
	assert.Len(t, indexer.indexed, total)
	assert.Equal(t, total, notifier.updated)
	assert.Zero(t, notifier.failures)
}

func TestScheduler_RefreshRegion_FetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("502 bad gateway")}
	notifier := &stubNotifier{}
	s := NewScheduler(fetcher, &stubParser{result: parsedMap()}, testLogger()).
		WithNotifier(notifier, nil)

	region, ok := regions.Get(regions.Capital)
	require.True(t, ok)
	err := s.refreshRegion(context.Background(), region)
	require.Error(t, err)
	assert.Equal(t, 1, notifier.failures)
	assert.Zero(t, notifier.updated)
}

func TestScheduler_RefreshRegion_EmptyParseAlerts(t *testing.T) {
	notifier := &stubNotifier{}
	s := NewScheduler(&stubFetcher{}, &stubParser{result: schedule.Map{}}, testLogger()).
		WithNotifier(notifier, nil)

	region, ok := regions.Get(regions.Rural)
	require.True(t, ok)
	require.NoError(t, s.refreshRegion(context.Background(), region))
	assert.Equal(t, 1, notifier.failures)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&stubFetcher{}, &stubParser{result: parsedMap()}, testLogger())
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}
