package schedule

import (
	"log/slog"
	"sort"
	"time"
)

// Sort orders schedules ascending by (year, month, day). Encounter order is
// the final tiebreak, so the sort is stable and total within one parse run.
//
// Schedules are expected to arrive with resolved years; an unresolved year
// falls back to the current year as a last resort and is logged, since two
// different years' entries could silently collide under that default.
func Sort(schedules []PharmacySchedule, logger *slog.Logger) []PharmacySchedule {
	fallbackYear := time.Now().Year()

	for _, s := range schedules {
		if !s.Date.HasYear() {
			logger.Warn("sorting schedule with unresolved year, defaulting to current year",
				slog.String("date", s.Date.String()),
				slog.Int("fallback_year", fallbackYear),
			)
		}
	}

	sort.SliceStable(schedules, func(i, j int) bool {
		return schedules[i].Date.SortKey(fallbackYear) < schedules[j].Date.SortKey(fallbackYear)
	})
	return schedules
}
