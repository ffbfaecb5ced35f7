package regions

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

//go:embed assets/rural_zones.csv
var ruralZonesCSV []byte

//go:embed assets/espinar_sites.csv
var espinarSitesCSV []byte

// Derived rural zones: their rows are not reliably present in the PDF text,
// so their schedules are synthesized from a sibling zone's date list.
const (
	// ZoneLaGranja alternates its two pharmacies on a biweekly cadence.
	ZoneLaGranja schedule.LocationID = "zbs-la-granja"
	// ZoneCantalejo has both its pharmacies on duty every day.
	ZoneCantalejo schedule.LocationID = "zbs-cantalejo"
	// ZoneNavas is the calendar-complete donor zone the derived zones
	// borrow their date lists from.
	ZoneNavas schedule.LocationID = "zbs-navas"
)

// ZoneEntry is one fixed pharmacy of a ZBS zone, keyed by the town-name
// token matched against freeform PDF text.
type ZoneEntry struct {
	Token   string
	Name    string
	Address string
	Phone   string
	Span    schedule.DutyTimeSpan
}

// Zone is one ZBS sub-area of the rural region with its fixed roster.
type Zone struct {
	Location schedule.DutyLocation
	Derived  bool
	Entries  []ZoneEntry
}

// Site is one pharmacy site of the El Espinar weekly rotation, keyed by the
// location token the roster lines end with.
type Site struct {
	Token   string
	Name    string
	Address string
	Phone   string
}

type zoneRow struct {
	ZoneID   string `csv:"zone_id"`
	ZoneName string `csv:"zone_name"`
	Token    string `csv:"token"`
	Name     string `csv:"name"`
	Address  string `csv:"address"`
	Phone    string `csv:"phone"`
	Span     string `csv:"span"`
}

type siteRow struct {
	Token   string `csv:"token"`
	Name    string `csv:"name"`
	Address string `csv:"address"`
	Phone   string `csv:"phone"`
}

// Initialized as vars, not in init, so the regions catalog can depend on
// them during package initialization.
var (
	ruralZones   = mustLoadZones(ruralZonesCSV)
	espinarSites = mustLoadSites(espinarSitesCSV)
)

func mustLoadZones(data []byte) []Zone {
	zones, err := loadZones(data)
	if err != nil {
		panic(fmt.Sprintf("regions: corrupt embedded rural roster: %v", err))
	}
	return zones
}

func mustLoadSites(data []byte) []Site {
	sites, err := loadSites(data)
	if err != nil {
		panic(fmt.Sprintf("regions: corrupt embedded espinar roster: %v", err))
	}
	return sites
}

func loadZones(data []byte) ([]Zone, error) {
	var rows []zoneRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, err
	}

	byID := make(map[string]int)
	var zones []Zone

	for _, row := range rows {
		span := schedule.RuralDaytime
		if row.Span == "extended" {
			span = schedule.RuralExtendedDaytime
		}

		entry := ZoneEntry{
			Token:   row.Token,
			Name:    row.Name,
			Address: row.Address,
			Phone:   row.Phone,
			Span:    span,
		}

		idx, ok := byID[row.ZoneID]
		if !ok {
			id := schedule.LocationID(row.ZoneID)
			byID[row.ZoneID] = len(zones)
			zones = append(zones, Zone{
				Location: schedule.DutyLocation{
					ID:       id,
					Name:     row.ZoneName,
					Icon:     "village",
					RegionID: string(Rural),
				},
				Derived: id == ZoneLaGranja || id == ZoneCantalejo,
			})
			idx = len(zones) - 1
		}
		zones[idx].Entries = append(zones[idx].Entries, entry)
	}

	if len(zones) == 0 {
		return nil, fmt.Errorf("no zones parsed")
	}
	return zones, nil
}

func loadSites(data []byte) ([]Site, error) {
	var rows []siteRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, err
	}

	sites := make([]Site, 0, len(rows))
	for _, row := range rows {
		sites = append(sites, Site(row))
	}
	if len(sites) == 0 {
		return nil, fmt.Errorf("no sites parsed")
	}
	return sites, nil
}

// RuralZones returns the eight ZBS zones of the rural region.
func RuralZones() []Zone {
	out := make([]Zone, len(ruralZones))
	copy(out, ruralZones)
	return out
}

// ZoneByLocation looks a ZBS zone up by its duty location id.
func ZoneByLocation(id schedule.LocationID) (Zone, bool) {
	for _, z := range ruralZones {
		if z.Location.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// EspinarSites returns the pharmacy-site vocabulary of the El Espinar
// rotation.
func EspinarSites() []Site {
	out := make([]Site, len(espinarSites))
	copy(out, espinarSites)
	return out
}

func ruralLocations() []schedule.DutyLocation {
	locs := make([]schedule.DutyLocation, 0, len(ruralZones))
	for _, z := range ruralZones {
		locs = append(locs, z.Location)
	}
	return locs
}
