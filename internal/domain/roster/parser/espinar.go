package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// espinarDateRe matches the rotation's "DD-mon" dates; a single line may
// carry several.
var espinarDateRe = regexp.MustCompile(
	`(?i)\b(\d{1,2})-(ene|feb|mar|abr|may|jun|jul|ago|sep|oct|nov|dic)\b`)

// siteMatchMaxRank bounds the edit distance accepted when a site line does
// not contain a vocabulary token verbatim. Extraction occasionally mangles
// a character or drops an accent.
const siteMatchMaxRank = 2

// EspinarStrategy parses the single-site weekly rotation: free-flowing text
// where a pharmacy-site line is followed (or preceded) by one or more
// DD-mon date lines. The roster carries no years; a working year starts one
// behind the current year and rolls forward every time a January 1st date
// appears, tracking the 12-month cycle.
type EspinarStrategy struct {
	logger *slog.Logger
	sites  []regions.Site
	now    func() time.Time
}

// NewEspinarStrategy creates the El Espinar strategy.
func NewEspinarStrategy(logger *slog.Logger, sites []regions.Site, now func() time.Time) *EspinarStrategy {
	return &EspinarStrategy{
		logger: logger.With(slog.String("strategy", "espinar")),
		sites:  sites,
		now:    now,
	}
}

type espinarDate struct {
	day   int
	month int
	year  int
}

// Parse runs the line scan over all pages in order. Page order matters:
// the year-rollover heuristic is sequential by design.
func (s *EspinarStrategy) Parse(pages []pdftext.Page) schedule.Map {
	var schedules []schedule.PharmacySchedule

	var pendingSite *regions.Site
	var pendingDates []espinarDate
	workingYear := s.now().Year() - 1

	emit := func() {
		for _, d := range pendingDates {
			ps := schedule.NewPharmacySchedule(schedule.NewDutyDate(d.day, d.month, d.year))
			ps.Add(schedule.FullDay, schedule.NewPharmacy(
				pendingSite.Name, pendingSite.Address, "Tfno: "+pendingSite.Phone))
			schedules = append(schedules, ps)
		}
		pendingSite = nil
		pendingDates = nil
	}

	for _, page := range pages {
		for _, line := range page.Lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if matches := espinarDateRe.FindAllStringSubmatch(line, -1); matches != nil {
				for _, m := range matches {
					day, err := strconv.Atoi(m[1])
					if err != nil || day < 1 || day > 31 {
						continue
					}
					month, _ := schedule.MonthNumber(m[2])
					if day == 1 && month == 1 {
						// The roster prints no years; January 1st is the
						// only rollover signal across its 12-month cycle.
						workingYear++
						s.logger.Debug("year rollover detected", slog.Int("working_year", workingYear))
					}
					pendingDates = append(pendingDates, espinarDate{day: day, month: month, year: workingYear})
				}
				if pendingSite != nil && len(pendingDates) > 0 {
					emit()
				}
				continue
			}

			if site, ok := s.matchSite(line); ok {
				pendingSite = &site
				if len(pendingDates) > 0 {
					emit()
				}
				continue
			}

			s.logger.Debug("skipping unmatched line", slog.String("line", line))
		}
	}

	if len(schedules) == 0 {
		s.logger.Warn("espinar roster produced no schedules")
		return schedule.Map{}
	}

	schedule.Sort(schedules, s.logger)

	region, _ := regions.Get(regions.ElEspinar)
	return schedule.Map{region.Locations[0].ID: schedules}
}

// matchSite resolves a line against the site vocabulary: verbatim substring
// first, then an accent- and noise-tolerant fuzzy pass. Site-looking lines
// outside the vocabulary get a synthesized placeholder record so an
// unexpected new site degrades the output instead of losing its dates.
func (s *EspinarStrategy) matchSite(line string) (regions.Site, bool) {
	upper := strings.ToUpper(line)

	// Longest verbatim token wins: "LOS ÁNGELES DE SAN RAFAEL" also
	// contains "SAN RAFAEL".
	var best *regions.Site
	for i, site := range s.sites {
		if strings.Contains(upper, site.Token) {
			if best == nil || len(site.Token) > len(best.Token) {
				best = &s.sites[i]
			}
		}
	}
	if best != nil {
		return *best, true
	}
	for _, site := range s.sites {
		// RankMatchNormalizedFold pre-checks byte lengths before it
		// normalizes, so a multibyte accent on the token side rejects a
		// line that lost the accent. Fold the token first.
		rank := fuzzy.RankMatchNormalizedFold(foldAccents(site.Token), upper)
		if rank >= 0 && rank <= siteMatchMaxRank {
			return site, true
		}
	}

	if looksLikeSiteHeader(line) {
		s.logger.Warn("unknown pharmacy site token, synthesizing placeholder",
			slog.String("line", line),
		)
		return regions.Site{
			Token: upper,
			Name:  schedule.NameMarker + " " + strings.TrimSpace(line),
		}, true
	}
	return regions.Site{}, false
}

var accentFolder = strings.NewReplacer(
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N")

func foldAccents(s string) string {
	return accentFolder.Replace(s)
}

// looksLikeSiteHeader reports whether a line resembles a rotation site
// header: printed in caps, letters only, reasonably short. Anything else is
// an ordinary unmatched line and gets skipped.
func looksLikeSiteHeader(line string) bool {
	if line != strings.ToUpper(line) || len(line) > 40 {
		return false
	}
	letters := 0
	for _, r := range line {
		switch {
		case unicode.IsDigit(r):
			return false
		case unicode.IsLetter(r):
			letters++
		}
	}
	return letters >= 4
}
