// Package service provides the roster extraction orchestration logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/parser"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// Repository defines the persistence interface for parsed schedules.
type Repository interface {
	ReplaceRegionSchedules(ctx context.Context, regionID regions.ID, schedules schedule.Map) error
}

// RosterService orchestrates roster extraction: open the PDF, extract page
// text, dispatch to the region's strategy, optionally persist the result.
// Strategies themselves never fail; errors here come from the file, the
// registry or the repository.
type RosterService struct {
	registry parser.Registry
	repo     Repository // Optional: nil if persistence not available
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewRosterService creates a new roster service.
func NewRosterService(registry parser.Registry, logger *slog.Logger) *RosterService {
	return &RosterService{
		registry: registry,
		logger:   logger,
		tracer:   otel.Tracer("farmaguardia/roster"),
	}
}

// WithRepository adds schedule persistence to the roster service.
func (s *RosterService) WithRepository(repo Repository) *RosterService {
	s.repo = repo
	return s
}

// ParseFile extracts the duty schedules for one region from a roster PDF on
// disk. The file handle is released before returning on all paths.
func (s *RosterService) ParseFile(ctx context.Context, regionID regions.ID, path string) (schedule.Map, error) {
	ctx, span := s.tracer.Start(ctx, "RosterService.ParseFile", trace.WithAttributes(
		attribute.String("region", string(regionID)),
		attribute.String("path", path),
	))
	defer span.End()

	doc, err := pdftext.Open(path)
	if err != nil {
		parseRuns.WithLabelValues(string(regionID), "open_failed").Inc()
		span.SetStatus(codes.Error, "open failed")
		span.RecordError(err)
		return nil, fmt.Errorf("failed to open roster pdf: %w", err)
	}
	defer doc.Close()

	return s.ParsePages(ctx, regionID, doc.Pages())
}

// ParsePages runs the region's strategy over already-extracted page text.
func (s *RosterService) ParsePages(ctx context.Context, regionID regions.ID, pages []pdftext.Page) (schedule.Map, error) {
	_, span := s.tracer.Start(ctx, "RosterService.ParsePages", trace.WithAttributes(
		attribute.String("region", string(regionID)),
		attribute.Int("pages", len(pages)),
	))
	defer span.End()

	strategy, ok := s.registry[regionID]
	if !ok {
		parseRuns.WithLabelValues(string(regionID), "unknown_region").Inc()
		return nil, fmt.Errorf("no parsing strategy registered for region %q", regionID)
	}

	pagesExtracted.WithLabelValues(string(regionID)).Add(float64(len(pages)))

	result := strategy.Parse(pages)

	total := 0
	for location, schedules := range result {
		total += len(schedules)
		schedulesParsed.WithLabelValues(string(regionID), string(location)).Add(float64(len(schedules)))
	}
	span.SetAttributes(attribute.Int("schedules", total))

	outcome := "ok"
	if total == 0 {
		outcome = "empty"
		s.logger.Warn("roster parse produced no schedules",
			slog.String("region", string(regionID)),
			slog.Int("pages", len(pages)))
	} else {
		s.logger.Info("roster parsed",
			slog.String("region", string(regionID)),
			slog.Int("pages", len(pages)),
			slog.Int("locations", len(result)),
			slog.Int("schedules", total))
	}
	parseRuns.WithLabelValues(string(regionID), outcome).Inc()

	return result, nil
}

// ParseAndStore parses a roster file and replaces the region's stored
// schedules with the result. Requires a repository.
func (s *RosterService) ParseAndStore(ctx context.Context, regionID regions.ID, path string) (schedule.Map, error) {
	result, err := s.ParseFile(ctx, regionID, path)
	if err != nil {
		return nil, err
	}
	if err := s.Store(ctx, regionID, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Store replaces the region's persisted schedules with the given result.
func (s *RosterService) Store(ctx context.Context, regionID regions.ID, result schedule.Map) error {
	if s.repo == nil {
		return fmt.Errorf("roster service has no repository configured")
	}
	if err := s.repo.ReplaceRegionSchedules(ctx, regionID, result); err != nil {
		return fmt.Errorf("failed to store schedules for region %q: %w", regionID, err)
	}
	return nil
}
