// Package repository provides database operations for parsed duty schedules.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// RosterRepository defines the interface for schedule persistence operations
type RosterRepository interface {
	// ReplaceRegionSchedules atomically swaps a region's stored schedules
	// for a freshly parsed set.
	ReplaceRegionSchedules(ctx context.Context, regionID regions.ID, schedules schedule.Map) error

	// LocationSchedules returns a location's stored schedules in date order.
	LocationSchedules(ctx context.Context, locationID schedule.LocationID) ([]schedule.PharmacySchedule, error)
}

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
