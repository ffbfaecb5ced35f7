package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

func espinarClock() time.Time {
	// Working year starts one behind: 2025.
	return time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
}

func newEspinar(t *testing.T) *EspinarStrategy {
	t.Helper()
	return NewEspinarStrategy(testLogger(), regions.EspinarSites(), espinarClock)
}

func linesPage(lines ...string) pdftext.Page {
	return pdftext.Page{Number: 1, Lines: lines}
}

func TestEspinarStrategy_Parse_SiteThenDates(t *testing.T) {
	s := newEspinar(t)

	result := s.Parse([]pdftext.Page{linesPage(
		"SAN RAFAEL",
		"11-ago 12-ago 13-ago",
	)})

	schedules := result["el-espinar"]
	require.Len(t, schedules, 3)
	for _, ps := range schedules {
		pharmacies := ps.Shifts[schedule.FullDay]
		require.Len(t, pharmacies, 1)
		assert.Equal(t, "FARMACIA BURGOS GALLEGO", pharmacies[0].Name)
		assert.Equal(t, 2025, ps.Date.Year)
	}
	assert.Equal(t, "2025-08-11", schedules[0].Date.Key())
}

func TestEspinarStrategy_Parse_DatesThenSite(t *testing.T) {
	s := newEspinar(t)

	schedules := s.Parse([]pdftext.Page{linesPage(
		"14-ago",
		"EL ESPINAR",
	)})["el-espinar"]

	require.Len(t, schedules, 1)
	assert.Equal(t, "FARMACIA MARTÍN GILARRANZ", schedules[0].Shifts[schedule.FullDay][0].Name)
}

func TestEspinarStrategy_Parse_YearRollover(t *testing.T) {
	s := newEspinar(t)

	schedules := s.Parse([]pdftext.Page{linesPage(
		"EL ESPINAR",
		"30-dic 31-dic",
		"SAN RAFAEL",
		"01-ene 02-ene",
	)})["el-espinar"]

	require.Len(t, schedules, 4)
	// Sorted ascending across the rollover.
	assert.Equal(t, "2025-12-30", schedules[0].Date.Key())
	assert.Equal(t, "2025-12-31", schedules[1].Date.Key())
	assert.Equal(t, "2026-01-01", schedules[2].Date.Key())
	assert.Equal(t, "2026-01-02", schedules[3].Date.Key())
}

func TestEspinarStrategy_Parse_UnknownSitePlaceholder(t *testing.T) {
	s := newEspinar(t)

	schedules := s.Parse([]pdftext.Page{linesPage(
		"OTERO DE HERREROS",
		"05-sep",
	)})["el-espinar"]

	require.Len(t, schedules, 1)
	p := schedules[0].Shifts[schedule.FullDay][0]
	assert.True(t, schedule.HasValidName(p.Name), "placeholder still carries the marker")
	assert.Contains(t, p.Name, "OTERO DE HERREROS")
	assert.Empty(t, p.Phone)
}

func TestEspinarStrategy_Parse_SkipsNoise(t *testing.T) {
	s := newEspinar(t)

	result := s.Parse([]pdftext.Page{linesPage(
		"Semana del 11 al 17 de agosto de guardia:",
		"sin fechas ni farmacias",
	)})
	assert.Empty(t, result)
}

func TestEspinarStrategy_matchSite_FuzzyAccents(t *testing.T) {
	sites := []regions.Site{
		{Token: "ESTACIÓN", Name: "FARMACIA RUIZ SEGOVIA"},
		{Token: "EL ESPINAR", Name: "FARMACIA MARTÍN GILARRANZ"},
	}
	s := NewEspinarStrategy(testLogger(), sites, espinarClock)

	// Extraction dropped the accent: ESTACIÓN printed as ESTACION.
	site, ok := s.matchSite("ESTACION")
	require.True(t, ok)
	assert.Equal(t, "FARMACIA RUIZ SEGOVIA", site.Name)

	// Extraction split the token; one inserted space stays within the
	// rank bound.
	site, ok = s.matchSite("ESTA CIÓN")
	require.True(t, ok)
	assert.Equal(t, "FARMACIA RUIZ SEGOVIA", site.Name)
}

func TestEspinarStrategy_Parse_Idempotent(t *testing.T) {
	s := newEspinar(t)
	pages := []pdftext.Page{linesPage("SAN RAFAEL", "11-ago")}

	a := s.Parse(pages)["el-espinar"]
	b := s.Parse(pages)["el-espinar"]
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Date.Key(), b[0].Date.Key())
}
