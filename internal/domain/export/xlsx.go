// Package export renders duty schedules as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/farmaguardia/farmaguardia/internal/domain/schedule"
)

const sheetName = "Guardias"

var headerRow = []string{"Fecha", "Día", "Turno", "Farmacia", "Dirección", "Teléfono"}

// WriteSchedules writes one location's duty schedules as an xlsx workbook.
// Rows are emitted in the order of the schedule list, one row per pharmacy
// per shift.
func WriteSchedules(w io.Writer, location schedule.DutyLocation, schedules []schedule.PharmacySchedule) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, title := range headerRow {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	for _, ps := range schedules {
		for _, span := range ps.SpansInOrder() {
			for _, p := range ps.Shifts[span] {
				values := []any{
					ps.Date.String(),
					ps.Date.DayOfWeek,
					span.DisplayName(),
					p.Name,
					p.Address,
					p.Phone,
				}
				for col, v := range values {
					cell, err := excelize.CoordinatesToCellName(col+1, row)
					if err != nil {
						return err
					}
					if err := f.SetCellValue(sheetName, cell, v); err != nil {
						return fmt.Errorf("failed to write row %d: %w", row, err)
					}
				}
				row++
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook for %s: %w", location.Name, err)
	}
	return nil
}
