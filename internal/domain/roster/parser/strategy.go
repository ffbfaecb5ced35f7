package parser

import (
	"log/slog"
	"time"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/internal/domain/roster/pdftext"
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// Strategy parses the extracted pages of one region's roster PDF into a
// schedule map. Implementations never fail: every malformed line, date or
// column degrades to fewer schedules, logged but not raised, so an empty
// map is the worst possible outcome.
type Strategy interface {
	Parse(pages []pdftext.Page) schedule.Map
}

// Registry is the flat strategy table keyed by region id.
type Registry map[regions.ID]Strategy

// NewRegistry wires the default strategy per catalog region. The clock is
// injectable so year inference is testable.
func NewRegistry(logger *slog.Logger, now func() time.Time) Registry {
	return Registry{
		regions.Capital:   NewCapitalStrategy(logger, now),
		regions.ElEspinar: NewEspinarStrategy(logger, regions.EspinarSites(), now),
		regions.Rural:     NewRuralStrategy(logger, regions.RuralZones()),
	}
}
