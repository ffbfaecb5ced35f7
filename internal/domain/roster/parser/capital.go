package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// capitalDateRe matches the capital roster's date column, e.g.
// "lunes, 15 de julio de 2025", "martes 16 julio" or "15 de julio".
var capitalDateRe = regexp.MustCompile(
	`(?i)^(?:(lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)[,.]?\s+)?(\d{1,2})\s+(?:de\s+)?([a-záéíóúñ]+)(?:\s+(?:de\s+)?(\d{4}))?$`)

// CapitalStrategy parses the capital-city layout: a strict three-column
// grid of date, day-shift pharmacy triple and night-shift pharmacy triple,
// one row per duty date. When page geometry is unavailable it falls back to
// a degraded scan over plain text lines, using weekday names as the
// date-column signal.
type CapitalStrategy struct {
	logger *slog.Logger
	batch  *BatchParser
	now    func() time.Time
}

// NewCapitalStrategy creates the capital strategy.
func NewCapitalStrategy(logger *slog.Logger, now func() time.Time) *CapitalStrategy {
	return &CapitalStrategy{
		logger: logger.With(slog.String("strategy", "capital")),
		batch:  NewBatchParser(logger),
		now:    now,
	}
}

// Parse processes every page independently, concatenates the per-page rows
// and sorts the result chronologically.
func (s *CapitalStrategy) Parse(pages []pdftext.Page) schedule.Map {
	var all []schedule.PharmacySchedule
	for _, page := range pages {
		all = append(all, s.parsePage(page)...)
	}
	if len(all) == 0 {
		s.logger.Warn("capital roster produced no schedules")
		return schedule.Map{}
	}

	all = schedule.MergeByDate(all)
	schedule.Sort(all, s.logger)

	region, _ := regions.Get(regions.Capital)
	return schedule.Map{region.Locations[0].ID: all}
}

func (s *CapitalStrategy) parsePage(page pdftext.Page) []schedule.PharmacySchedule {
	var dates []schedule.DutyDate
	var day, night []schedule.Pharmacy

	if cols := page.Columns(3); cols != nil {
		dates = s.parseDateColumn(cols[0])
		day = s.batch.ParseTriples(groupTriples(cols[1]))
		night = s.batch.ParseTriples(groupTriples(cols[2]))
	} else {
		dates, day, night = s.parsePlainText(page.Lines)
	}

	n := min(len(dates), len(day), len(night))
	if n < len(dates) || n < len(day) || n < len(night) {
		// Partial or misaligned pages must not corrupt the good rows:
		// surplus entries on any side are dropped.
		s.logger.Debug("truncating misaligned columns",
			slog.Int("page", page.Number),
			slog.Int("dates", len(dates)),
			slog.Int("day_pharmacies", len(day)),
			slog.Int("night_pharmacies", len(night)),
			slog.Int("kept", n),
		)
	}

	out := make([]schedule.PharmacySchedule, 0, n)
	for i := 0; i < n; i++ {
		ps := schedule.NewPharmacySchedule(dates[i])
		ps.Add(schedule.CapitalDay, day[i])
		ps.Add(schedule.CapitalNight, night[i])
		out = append(out, ps)
	}
	return out
}

// parseDateColumn parses and deduplicates the date column, preserving
// first-seen order.
func (s *CapitalStrategy) parseDateColumn(lines []string) []schedule.DutyDate {
	seen := make(map[string]bool)
	var dates []schedule.DutyDate

	for _, line := range lines {
		date, ok := s.parseDate(line)
		if !ok {
			s.logger.Debug("unparseable date line", slog.String("line", line))
			continue
		}
		if seen[date.Key()] {
			continue
		}
		seen[date.Key()] = true
		dates = append(dates, date)
	}
	return dates
}

// parsePlainText is the degraded mode: weekday-led lines are dates, the
// rest accumulate into a flat pharmacy buffer that is split evenly into the
// day block followed by the night block, the order the roster prints them.
func (s *CapitalStrategy) parsePlainText(lines []string) ([]schedule.DutyDate, []schedule.Pharmacy, []schedule.Pharmacy) {
	seen := make(map[string]bool)
	var dates []schedule.DutyDate
	var buffer []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if startsWithWeekday(line) {
			date, ok := s.parseDate(line)
			if !ok {
				s.logger.Debug("unparseable date line", slog.String("line", line))
				continue
			}
			if !seen[date.Key()] {
				seen[date.Key()] = true
				dates = append(dates, date)
			}
			continue
		}

		// Header text above the grid would shift the implicit groups of
		// three; pharmacy lines only start once a date has been seen.
		if len(dates) > 0 {
			buffer = append(buffer, line)
		}
	}

	pharmacies := s.batch.ParseLines(buffer)
	half := len(pharmacies) / 2
	return dates, pharmacies[:half], pharmacies[half:]
}

func (s *CapitalStrategy) parseDate(line string) (schedule.DutyDate, bool) {
	m := capitalDateRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return schedule.DutyDate{}, false
	}

	month, ok := schedule.MonthNumber(m[3])
	if !ok {
		return schedule.DutyDate{}, false
	}
	dayNum, err := strconv.Atoi(m[2])
	if err != nil || dayNum < 1 || dayNum > 31 {
		return schedule.DutyDate{}, false
	}

	year := s.now().Year()
	if m[4] != "" {
		year, _ = strconv.Atoi(m[4])
	}
	return schedule.NewDutyDate(dayNum, month, year), true
}

func startsWithWeekday(line string) bool {
	first, _, _ := strings.Cut(line, " ")
	return schedule.IsWeekdayName(first)
}

// groupTriples folds a column's lines into consecutive (name, address,
// info) triples. An incomplete trailing group is padded with empty fields;
// the marker validation downstream decides its fate.
func groupTriples(lines []string) []Triple {
	var out []Triple
	for i := 0; i < len(lines); i += 3 {
		t := Triple{Name: lines[i]}
		if i+1 < len(lines) {
			t.Address = lines[i+1]
		}
		if i+2 < len(lines) {
			t.Info = lines[i+2]
		}
		out = append(out, t)
	}
	return out
}
