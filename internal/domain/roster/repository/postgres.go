package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// PostgresRosterRepository implements RosterRepository using PostgreSQL
type PostgresRosterRepository struct {
	db DB
}

// NewPostgresRosterRepository creates a new PostgreSQL roster repository
func NewPostgresRosterRepository(db DB) *PostgresRosterRepository {
	return &PostgresRosterRepository{db: db}
}

// dutyRow is the flattened persistence shape: one row per pharmacy per
// shift per date.
type dutyRow struct {
	locationID string
	dutyDate   time.Time
	spanStart  string
	spanEnd    string
	name       string
	address    string
	phone      string
	info       string
}

// ReplaceRegionSchedules deletes the region's rows and inserts the new set
// in one transaction. Dates without a resolved year cannot be stored as a
// SQL date and are skipped.
func (r *PostgresRosterRepository) ReplaceRegionSchedules(ctx context.Context, regionID regions.ID, schedules schedule.Map) error {
	rows := flattenSchedules(schedules)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `DELETE FROM duty_entries WHERE region_id = $1`, string(regionID)); err != nil {
		return fmt.Errorf("failed to clear region schedules: %w", err)
	}

	insert := `
		INSERT INTO duty_entries (id, region_id, location_id, duty_date, span_start, span_end, pharmacy_name, address, phone, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, row := range rows {
		if _, err := tx.Exec(ctx, insert,
			uuid.New(),
			string(regionID),
			row.locationID,
			row.dutyDate,
			row.spanStart,
			row.spanEnd,
			row.name,
			row.address,
			row.phone,
			row.info,
		); err != nil {
			return fmt.Errorf("failed to insert duty entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedules: %w", err)
	}
	return nil
}

// LocationSchedules rebuilds PharmacySchedule values from the flattened rows.
func (r *PostgresRosterRepository) LocationSchedules(ctx context.Context, locationID schedule.LocationID) ([]schedule.PharmacySchedule, error) {
	query := `
		SELECT duty_date, span_start, span_end, pharmacy_name, address, phone, additional_info
		FROM duty_entries
		WHERE location_id = $1
		ORDER BY duty_date, span_start, pharmacy_name`

	rows, err := r.db.Query(ctx, query, string(locationID))
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []schedule.PharmacySchedule
	byDate := make(map[string]int)

	for rows.Next() {
		var (
			dutyDate           time.Time
			spanStart, spanEnd string
			name, address      string
			phone, info        string
		)
		if err := rows.Scan(&dutyDate, &spanStart, &spanEnd, &name, &address, &phone, &info); err != nil {
			return nil, fmt.Errorf("failed to scan duty entry: %w", err)
		}

		span, err := parseSpan(spanStart, spanEnd)
		if err != nil {
			return nil, err
		}

		date := schedule.NewDutyDate(dutyDate.Day(), int(dutyDate.Month()), dutyDate.Year())
		idx, ok := byDate[date.Key()]
		if !ok {
			idx = len(schedules)
			byDate[date.Key()] = idx
			schedules = append(schedules, schedule.NewPharmacySchedule(date))
		}
		schedules[idx].Add(span, schedule.Pharmacy{
			ID:             uuid.New(),
			Name:           name,
			Address:        address,
			Phone:          phone,
			AdditionalInfo: info,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read duty entries: %w", err)
	}
	return schedules, nil
}

// flattenSchedules turns a schedule map into insert rows in a deterministic
// order. Unresolvable dates are dropped.
func flattenSchedules(schedules schedule.Map) []dutyRow {
	var rows []dutyRow
	for locationID, list := range schedules {
		for _, ps := range list {
			date, ok := ps.Date.Time(time.UTC)
			if !ok {
				continue
			}
			for span, pharmacies := range ps.Shifts {
				for _, p := range pharmacies {
					rows = append(rows, dutyRow{
						locationID: string(locationID),
						dutyDate:   date,
						spanStart:  clockString(span.StartHour, span.StartMinute),
						spanEnd:    clockString(span.EndHour, span.EndMinute),
						name:       p.Name,
						address:    p.Address,
						phone:      p.Phone,
						info:       p.AdditionalInfo,
					})
				}
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.locationID != b.locationID {
			return a.locationID < b.locationID
		}
		if !a.dutyDate.Equal(b.dutyDate) {
			return a.dutyDate.Before(b.dutyDate)
		}
		if a.spanStart != b.spanStart {
			return a.spanStart < b.spanStart
		}
		return a.name < b.name
	})
	return rows
}

func clockString(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func parseSpan(start, end string) (schedule.DutyTimeSpan, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return schedule.DutyTimeSpan{}, err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return schedule.DutyTimeSpan{}, err
	}
	return schedule.DutyTimeSpan{StartHour: sh, StartMinute: sm, EndHour: eh, EndMinute: em}, nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed clock value %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed clock value %q", s)
	}
	return hour, minute, nil
}
