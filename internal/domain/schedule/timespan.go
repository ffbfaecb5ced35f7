// Package schedule defines the duty-roster domain model: duty time spans,
// duty dates, pharmacies and the per-location schedule maps produced by the
// PDF parsing strategies.
package schedule

import (
	"fmt"
	"time"
)

// DutyTimeSpan is a named duty interval within a day. A span crosses
// midnight iff its end time is lexicographically before its start time;
// that comparison is the only cross-midnight signal in the model.
// Values are immutable and safe to use as map keys.
type DutyTimeSpan struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// Named duty spans used by the region strategies.
var (
	// CapitalDay covers the capital's daytime shift.
	CapitalDay = DutyTimeSpan{StartHour: 10, StartMinute: 15, EndHour: 22, EndMinute: 0}
	// CapitalNight covers the capital's overnight shift, crossing midnight.
	CapitalNight = DutyTimeSpan{StartHour: 22, StartMinute: 0, EndHour: 10, EndMinute: 15}
	// FullDay is the 24h bucket used by single-shift regions.
	FullDay = DutyTimeSpan{StartHour: 0, StartMinute: 0, EndHour: 23, EndMinute: 59}
	// RuralDaytime is the standard rural ZBS daytime shift.
	RuralDaytime = DutyTimeSpan{StartHour: 10, StartMinute: 0, EndHour: 20, EndMinute: 0}
	// RuralExtendedDaytime is the extended rural shift some zones publish.
	RuralExtendedDaytime = DutyTimeSpan{StartHour: 10, StartMinute: 0, EndHour: 22, EndMinute: 0}
)

// SpansMultipleDays reports whether the span crosses midnight.
func (s DutyTimeSpan) SpansMultipleDays() bool {
	if s.EndHour != s.StartHour {
		return s.EndHour < s.StartHour
	}
	return s.EndMinute < s.StartMinute
}

// ContainsTimeOfDay reports whether the given wall-clock time falls inside
// the span, using minutes-since-midnight arithmetic. For spans that cross
// midnight the containment wraps around.
func (s DutyTimeSpan) ContainsTimeOfDay(hour, minute int) bool {
	t := hour*60 + minute
	start := s.StartHour*60 + s.StartMinute
	end := s.EndHour*60 + s.EndMinute

	if s.SpansMultipleDays() {
		return t >= start || t <= end
	}
	return t >= start && t <= end
}

// Anchor selects which calendar day a cross-midnight span is pinned to when
// testing an absolute instant. Published rosters are ambiguous about whether
// a night shift listed under a date starts on that date or ends on it, so
// the caller must choose explicitly.
type Anchor int

const (
	// AnchorStartDay pins the span's start time to the duty date; the end
	// falls on the following day when the span crosses midnight.
	AnchorStartDay Anchor = iota
	// AnchorEndDay pins the span's end time to the duty date; the start
	// falls on the preceding day when the span crosses midnight.
	AnchorEndDay
)

// Contains reports whether the absolute instant ts falls inside the span on
// the given duty date. For single-day spans both anchors are equivalent.
func (s DutyTimeSpan) Contains(date DutyDate, ts time.Time, anchor Anchor) bool {
	day, ok := date.Time(ts.Location())
	if !ok {
		return false
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), s.StartHour, s.StartMinute, 0, 0, ts.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), s.EndHour, s.EndMinute, 0, 0, ts.Location())

	if s.SpansMultipleDays() {
		switch anchor {
		case AnchorEndDay:
			start = start.AddDate(0, 0, -1)
		default:
			end = end.AddDate(0, 0, 1)
		}
	}

	return !ts.Before(start) && !ts.After(end)
}

// DisplayName returns a short Spanish label for the span.
func (s DutyTimeSpan) DisplayName() string {
	switch {
	case s == FullDay:
		return "Todo el día"
	case s.SpansMultipleDays():
		return "Guardia nocturna"
	case s.StartHour < 12 && s.EndHour >= 20:
		return "Guardia diurna"
	default:
		return "Guardia"
	}
}

// ShiftInfo returns a human-readable Spanish description of the duty hours.
func (s DutyTimeSpan) ShiftInfo() string {
	if s == FullDay {
		return "De guardia las 24 horas"
	}
	if s.SpansMultipleDays() {
		return fmt.Sprintf("De %02d:%02d a %02d:%02d del día siguiente",
			s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
	}
	return fmt.Sprintf("De %02d:%02d a %02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}

// String implements fmt.Stringer for logging.
func (s DutyTimeSpan) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.StartHour, s.StartMinute, s.EndHour, s.EndMinute)
}
