package schedule

import (
	"fmt"
	"strings"
	"time"
)

// monthNumbers maps Spanish month abbreviations to their 1-based number.
// Roster PDFs use the three-letter forms; full names resolve through the
// same table by prefix.
var monthNumbers = map[string]int{
	"ene": 1, "feb": 2, "mar": 3, "abr": 4, "may": 5, "jun": 6,
	"jul": 7, "ago": 8, "sep": 9, "oct": 10, "nov": 11, "dic": 12,
}

// monthNames is the inverse lookup, 1-based.
var monthNames = [13]string{"", "ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic"}

// weekdayNames holds the Spanish weekday names, indexed by time.Weekday.
var weekdayNames = [7]string{"domingo", "lunes", "martes", "miércoles",
	"jueves", "viernes", "sábado"}

// MonthNumber resolves a Spanish month name or abbreviation to 1..12.
// Matching is case-insensitive and tolerates full names ("septiembre")
// as well as the roster abbreviations ("sep").
func MonthNumber(name string) (int, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	// "septiembre" is abbreviated both "sep" and "set" in the wild.
	if n == "set" || strings.HasPrefix(n, "setiembre") {
		return 9, true
	}
	if len(n) > 3 {
		n = n[:3]
	}
	num, ok := monthNumbers[n]
	return num, ok
}

// MonthName returns the roster abbreviation for a 1-based month number.
func MonthName(number int) (string, bool) {
	if number < 1 || number > 12 {
		return "", false
	}
	return monthNames[number], true
}

// WeekdayName returns the Spanish name for a weekday.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// IsWeekdayName reports whether s is a Spanish weekday name. Roster layouts
// that lack column geometry use this as the date-column signal.
func IsWeekdayName(s string) bool {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.TrimSuffix(n, ",")
	for _, w := range weekdayNames {
		if n == w {
			return true
		}
	}
	// PDFs drop accents inconsistently.
	return n == "miercoles" || n == "sabado"
}

// DutyDate is a roster calendar date. Month is kept as the localized name
// the PDF used; Year is 0 while unresolved. Year must be resolved before a
// date takes part in sorting or containment checks.
type DutyDate struct {
	DayOfWeek string
	Day       int
	Month     string
	Year      int
}

// NewDutyDate builds a DutyDate from numeric components, filling in the
// localized month and weekday names.
func NewDutyDate(day, month, year int) DutyDate {
	name, _ := MonthName(month)
	d := DutyDate{Day: day, Month: name, Year: year}
	if t, ok := d.Time(time.UTC); ok {
		d.DayOfWeek = WeekdayName(t.Weekday())
	}
	return d
}

// MonthNumber returns the 1-based month number for the stored name.
func (d DutyDate) MonthNumber() (int, bool) {
	return MonthNumber(d.Month)
}

// HasYear reports whether the year has been resolved.
func (d DutyDate) HasYear() bool {
	return d.Year != 0
}

// Key is the deduplication key: same (day, month, year) means same date
// regardless of how the weekday was spelled.
func (d DutyDate) Key() string {
	m, _ := d.MonthNumber()
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, m, d.Day)
}

// SortKey returns a totally ordered integer key (year, month, day).
// A missing year resolves to the given fallback; callers are expected to
// have resolved years already, so the fallback is a last resort.
func (d DutyDate) SortKey(fallbackYear int) int {
	y := d.Year
	if y == 0 {
		y = fallbackYear
	}
	m, _ := d.MonthNumber()
	return y*10000 + m*100 + d.Day
}

// Time converts the date to midnight in the given location. Returns false
// when the month name is unknown or the year is unresolved.
func (d DutyDate) Time(loc *time.Location) (time.Time, bool) {
	m, ok := d.MonthNumber()
	if !ok || !d.HasYear() {
		return time.Time{}, false
	}
	return time.Date(d.Year, time.Month(m), d.Day, 0, 0, 0, 0, loc), true
}

// SameDayAs reports whether ts falls on this duty date in its location.
func (d DutyDate) SameDayAs(ts time.Time) bool {
	day, ok := d.Time(ts.Location())
	if !ok {
		return false
	}
	y1, m1, d1 := day.Date()
	y2, m2, d2 := ts.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// String renders the date the way rosters print it, e.g. "15-jul-2025".
func (d DutyDate) String() string {
	if d.HasYear() {
		return fmt.Sprintf("%02d-%s-%d", d.Day, d.Month, d.Year)
	}
	return fmt.Sprintf("%02d-%s", d.Day, d.Month)
}
