// Package regions holds the static catalog of duty-roster sources: the
// publishing regions, their PDF locations and metadata, and the fixed
// pharmacy rosters of the rural ZBS zones. The catalog is data, not
// behavior; parsing strategies consume it read-only.
package regions

import (
	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

// ID identifies a publishing region. Each region maps to exactly one
// parsing strategy.
type ID string

const (
	// Capital is the capital-city roster: a monthly PDF with a strict
	// three-column day/date/night grid.
	Capital ID = "segovia-capital"
	// ElEspinar is a single-site weekly rotation published as free-flowing
	// text with embedded dates.
	ElEspinar ID = "el-espinar"
	// Rural is the provincial roster covering eight ZBS zones, published
	// as regex-parseable date lines with town names.
	Rural ID = "segovia-rural"
)

// Region describes one roster source PDF and its metadata flags.
type Region struct {
	ID               ID
	Name             string
	SourceURL        string
	Monthly          bool // monthly publication; false means weekly
	Has24hPharmacies bool
	Locations        []schedule.DutyLocation
}

var catalog = []Region{
	{
		ID:               Capital,
		Name:             "Segovia capital",
		SourceURL:        "https://cofsegovia.com/guardias/capital.pdf",
		Monthly:          true,
		Has24hPharmacies: true,
		Locations: []schedule.DutyLocation{
			{ID: "segovia-capital", Name: "Segovia capital", Icon: "city", RegionID: string(Capital)},
		},
	},
	{
		ID:        ElEspinar,
		Name:      "El Espinar",
		SourceURL: "https://cofsegovia.com/guardias/el-espinar.pdf",
		Monthly:   false,
		Locations: []schedule.DutyLocation{
			{ID: "el-espinar", Name: "El Espinar", Icon: "town", RegionID: string(ElEspinar)},
		},
	},
	{
		ID:        Rural,
		Name:      "Segovia rural",
		SourceURL: "https://cofsegovia.com/guardias/rural.pdf",
		Monthly:   true,
		Locations: ruralLocations(),
	},
}

// All returns every region in the catalog, in display order.
func All() []Region {
	out := make([]Region, len(catalog))
	copy(out, catalog)
	return out
}

// Get looks a region up by id.
func Get(id ID) (Region, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// LocationByID resolves a duty location across all regions.
func LocationByID(id schedule.LocationID) (schedule.DutyLocation, bool) {
	for _, r := range catalog {
		for _, loc := range r.Locations {
			if loc.ID == id {
				return loc, true
			}
		}
	}
	return schedule.DutyLocation{}, false
}
