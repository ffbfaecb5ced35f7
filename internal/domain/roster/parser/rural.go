package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// ruralDateRe matches the rural roster's fully-qualified "DD-mon-YY" dates.
// Lines without one carry no information in this layout.
var ruralDateRe = regexp.MustCompile(
	`(?i)\b(\d{1,2})-(ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)-(\d{2})\b`)

// tokenRef points one matcher pattern back to its zone entry.
type tokenRef struct {
	zone  schedule.LocationID
	entry regions.ZoneEntry
}

// RuralStrategy parses the provincial roster covering the ZBS zones. Every
// line carrying a DD-mon-YY date is tested against all zones' town tokens
// in a single Aho-Corasick pass; each token hit contributes that zone's
// fixed pharmacy record to the date. Two zones are never reliably printed
// and are derived afterwards from the donor zone's date list.
type RuralStrategy struct {
	logger  *slog.Logger
	zones   []regions.Zone
	matcher *ahocorasick.Matcher
	refs    [][]tokenRef // per matcher pattern index
}

// NewRuralStrategy creates the rural strategy, pre-building the token
// matcher over all non-derived zones.
func NewRuralStrategy(logger *slog.Logger, zones []regions.Zone) *RuralStrategy {
	var patterns [][]byte
	var refs [][]tokenRef
	byToken := make(map[string]int)

	for _, z := range zones {
		if z.Derived {
			continue
		}
		for _, e := range z.Entries {
			token := strings.ToUpper(e.Token)
			ref := tokenRef{zone: z.Location.ID, entry: e}
			if idx, ok := byToken[token]; ok {
				refs[idx] = append(refs[idx], ref)
				continue
			}
			byToken[token] = len(patterns)
			patterns = append(patterns, []byte(token))
			refs = append(refs, []tokenRef{ref})
		}
	}

	return &RuralStrategy{
		logger:  logger.With(slog.String("strategy", "rural")),
		zones:   zones,
		matcher: ahocorasick.NewMatcher(patterns),
		refs:    refs,
	}
}

// Parse scans all pages sequentially, accumulating per-zone schedules, then
// synthesizes the derived zones and sorts every zone's list.
func (s *RuralStrategy) Parse(pages []pdftext.Page) schedule.Map {
	perZone := make(map[schedule.LocationID][]schedule.PharmacySchedule)
	firstSeen := make(map[string]int) // derived-zone token -> global position
	pos := 0

	for _, page := range pages {
		for _, line := range page.Lines {
			upper := strings.ToUpper(line)
			s.trackDerivedTokens(upper, pos, firstSeen)
			pos += len(upper) + 1

			m := ruralDateRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			date, ok := parseRuralDate(m)
			if !ok {
				s.logger.Debug("unparseable rural date", slog.String("line", line))
				continue
			}

			for _, hit := range s.matcher.Match([]byte(upper)) {
				for _, ref := range s.refs[hit] {
					ps := schedule.NewPharmacySchedule(date)
					ps.Add(ref.entry.Span, entryPharmacy(ref.entry))
					perZone[ref.zone] = append(perZone[ref.zone], ps)
				}
			}
		}
	}

	out := schedule.Map{}
	for zone, schedules := range perZone {
		merged := schedule.MergeByDate(schedules)
		schedule.Sort(merged, s.logger)
		out[zone] = merged
	}

	s.deriveCantalejo(out)
	s.deriveLaGranja(out, firstSeen)

	if len(out) == 0 {
		s.logger.Warn("rural roster produced no schedules")
	}
	return out
}

// trackDerivedTokens records the first raw-text position of each derived
// zone's tokens; La Granja's alternation is seeded from them.
func (s *RuralStrategy) trackDerivedTokens(upper string, pos int, firstSeen map[string]int) {
	for _, z := range s.zones {
		if !z.Derived {
			continue
		}
		for _, e := range z.Entries {
			token := strings.ToUpper(e.Token)
			if _, ok := firstSeen[token]; ok {
				continue
			}
			if idx := strings.Index(upper, token); idx >= 0 {
				firstSeen[token] = pos + idx
			}
		}
	}
}

// deriveCantalejo clones the donor zone's date list with both Cantalejo
// pharmacies on duty every date under the rural daytime span.
func (s *RuralStrategy) deriveCantalejo(out schedule.Map) {
	zone, ok := s.zone(regions.ZoneCantalejo)
	if !ok {
		return
	}
	donor := out[regions.ZoneNavas]
	if len(donor) == 0 {
		s.logger.Warn("donor zone empty, cantalejo omitted")
		return
	}

	schedules := make([]schedule.PharmacySchedule, 0, len(donor))
	for _, d := range donor {
		ps := schedule.NewPharmacySchedule(d.Date)
		for _, e := range zone.Entries {
			ps.Add(schedule.RuralDaytime, entryPharmacy(e))
		}
		schedules = append(schedules, ps)
	}
	out[zone.Location.ID] = schedules
}

// deriveLaGranja clones the donor zone's date list alternating the two La
// Granja pharmacies biweekly. The pharmacy whose token appears first in raw
// text order takes the even-numbered weeks (1-based, weekNumber = index/7
// + 1); a tie in first occurrence leaves the assignment indeterminate and
// the zone is omitted.
func (s *RuralStrategy) deriveLaGranja(out schedule.Map, firstSeen map[string]int) {
	zone, ok := s.zone(regions.ZoneLaGranja)
	if !ok || len(zone.Entries) != 2 {
		return
	}
	donor := out[regions.ZoneNavas]
	if len(donor) == 0 {
		s.logger.Warn("donor zone empty, la granja omitted")
		return
	}

	posA, okA := firstSeen[strings.ToUpper(zone.Entries[0].Token)]
	posB, okB := firstSeen[strings.ToUpper(zone.Entries[1].Token)]

	var evenWeeks, oddWeeks regions.ZoneEntry
	switch {
	case okA && (!okB || posA < posB):
		evenWeeks, oddWeeks = zone.Entries[0], zone.Entries[1]
	case okB && (!okA || posB < posA):
		evenWeeks, oddWeeks = zone.Entries[1], zone.Entries[0]
	default:
		// Neither token seen, or an exact tie: indeterminate.
		s.logger.Warn("la granja alternation indeterminate, zone omitted")
		return
	}

	schedules := make([]schedule.PharmacySchedule, 0, len(donor))
	for i, d := range donor {
		weekNumber := i/7 + 1
		entry := oddWeeks
		if weekNumber%2 == 0 {
			entry = evenWeeks
		}
		ps := schedule.NewPharmacySchedule(d.Date)
		ps.Add(entry.Span, entryPharmacy(entry))
		schedules = append(schedules, ps)
	}
	out[zone.Location.ID] = schedules
}

func (s *RuralStrategy) zone(id schedule.LocationID) (regions.Zone, bool) {
	for _, z := range s.zones {
		if z.Location.ID == id {
			return z, true
		}
	}
	return regions.Zone{}, false
}

func parseRuralDate(m []string) (schedule.DutyDate, bool) {
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return schedule.DutyDate{}, false
	}
	month, ok := schedule.MonthNumber(m[2])
	if !ok {
		return schedule.DutyDate{}, false
	}
	yy, err := strconv.Atoi(m[3])
	if err != nil {
		return schedule.DutyDate{}, false
	}
	return schedule.NewDutyDate(day, month, 2000+yy), true
}

func entryPharmacy(e regions.ZoneEntry) schedule.Pharmacy {
	return schedule.NewPharmacy(e.Name, e.Address, "Tfno: "+e.Phone)
}
