package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

func TestWriteSchedules(t *testing.T) {
	day := schedule.NewPharmacySchedule(schedule.NewDutyDate(15, 7, 2025))
	day.Add(schedule.CapitalDay, schedule.NewPharmacy("FARMACIA DÍA", "C. Real 1", "Tfno: 921 111111"))
	day.Add(schedule.CapitalNight, schedule.NewPharmacy("FARMACIA NOCHE", "C. Real 2", "Tfno: 921 222222"))
	next := schedule.NewPharmacySchedule(schedule.NewDutyDate(16, 7, 2025))
	next.Add(schedule.FullDay, schedule.NewPharmacy("FARMACIA TODO", "C. Real 3", ""))

	location := schedule.DutyLocation{ID: "segovia-capital", Name: "Segovia capital"}

	var buf bytes.Buffer
	require.NoError(t, WriteSchedules(&buf, location, []schedule.PharmacySchedule{day, next}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Fecha", rows[0][0])
	assert.Equal(t, "Farmacia", rows[0][3])

	// Day shift sorts before night shift within the same date.
	assert.Equal(t, "15-jul-2025", rows[1][0])
	assert.Equal(t, "FARMACIA DÍA", rows[1][3])
	assert.Equal(t, "921 111111", rows[1][5])
	assert.Equal(t, "FARMACIA NOCHE", rows[2][3])
	assert.Equal(t, "FARMACIA TODO", rows[3][3])
}

func TestWriteSchedules_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchedules(&buf, schedule.DutyLocation{Name: "ZBS Riaza"}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
