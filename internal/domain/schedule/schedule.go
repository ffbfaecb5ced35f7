package schedule

import "sort"

// LocationID identifies a duty location: either a whole region or one ZBS
// zone inside the rural region. Schedule maps are keyed by it, so two
// DutyLocation values describing the same physical zone are interchangeable
// as long as they share an ID.
type LocationID string

// DutyLocation describes a named duty sub-area. Notes carry free-form
// remarks shown alongside the roster (e.g. "consultar cartel en farmacia").
type DutyLocation struct {
	ID       LocationID
	Name     string
	Icon     string
	Notes    string
	RegionID string
}

// Map is the output of a region strategy: ordered schedule lists per duty
// location. Single-zone regions produce a one-entry map.
type Map map[LocationID][]PharmacySchedule

// Merge folds other into m, concatenating schedule lists per location.
// Same-date collisions are resolved later by MergeByDate; page-level merge
// never overwrites.
func (m Map) Merge(other Map) {
	for loc, schedules := range other {
		m[loc] = append(m[loc], schedules...)
	}
}

// PharmacySchedule holds the on-duty pharmacies for one date, grouped by
// duty span. Most regions populate either a day/night pair or a single
// full-day bucket.
type PharmacySchedule struct {
	Date   DutyDate
	Shifts map[DutyTimeSpan][]Pharmacy
}

// NewPharmacySchedule builds a schedule with an empty shift map.
func NewPharmacySchedule(date DutyDate) PharmacySchedule {
	return PharmacySchedule{Date: date, Shifts: make(map[DutyTimeSpan][]Pharmacy)}
}

// Add appends pharmacies to the bucket for the given span.
func (ps *PharmacySchedule) Add(span DutyTimeSpan, pharmacies ...Pharmacy) {
	if ps.Shifts == nil {
		ps.Shifts = make(map[DutyTimeSpan][]Pharmacy)
	}
	ps.Shifts[span] = append(ps.Shifts[span], pharmacies...)
}

// DayShiftPharmacies returns the daytime bucket, falling back to the
// full-day bucket for regions that only publish a single shift. The
// fallback must stay: callers rely on it for full-day-only regions.
func (ps PharmacySchedule) DayShiftPharmacies() []Pharmacy {
	if p, ok := ps.Shifts[CapitalDay]; ok {
		return p
	}
	return ps.Shifts[FullDay]
}

// NightShiftPharmacies returns the night bucket with the same full-day
// fallback as DayShiftPharmacies.
func (ps PharmacySchedule) NightShiftPharmacies() []Pharmacy {
	if p, ok := ps.Shifts[CapitalNight]; ok {
		return p
	}
	return ps.Shifts[FullDay]
}

// OnDutyAt returns the pharmacies whose span contains the given wall-clock
// time. A cross-midnight span matches both its evening and its early-morning
// hours; callers resolving an instant against a dated schedule use
// DutyTimeSpan.Contains with an anchor instead.
func (ps PharmacySchedule) OnDutyAt(hour, minute int) []Pharmacy {
	var out []Pharmacy
	for span, pharmacies := range ps.Shifts {
		if span.ContainsTimeOfDay(hour, minute) {
			out = append(out, pharmacies...)
		}
	}
	return out
}

// SpansInOrder returns the shift spans sorted by start then end time.
// Shifts is a map; callers producing user-visible output need a stable
// iteration order.
func (ps PharmacySchedule) SpansInOrder() []DutyTimeSpan {
	spans := make([]DutyTimeSpan, 0, len(ps.Shifts))
	for span := range ps.Shifts {
		spans = append(spans, span)
	}
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.StartHour != b.StartHour {
			return a.StartHour < b.StartHour
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		if a.EndHour != b.EndHour {
			return a.EndHour < b.EndHour
		}
		return a.EndMinute < b.EndMinute
	})
	return spans
}

// MergeByDate collapses schedules sharing a date key by concatenating their
// shift buckets, preserving first-seen order. A zone's full rota for one
// date may arrive split across lines or pages.
func MergeByDate(schedules []PharmacySchedule) []PharmacySchedule {
	byKey := make(map[string]int, len(schedules))
	out := make([]PharmacySchedule, 0, len(schedules))

	for _, s := range schedules {
		key := s.Date.Key()
		idx, seen := byKey[key]
		if !seen {
			byKey[key] = len(out)
			out = append(out, s)
			continue
		}
		for span, pharmacies := range s.Shifts {
			out[idx].Add(span, pharmacies...)
		}
	}
	return out
}
