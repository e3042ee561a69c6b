// Package export writes library snapshots to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/tana/internal/models"
)

// sheetOrder fixes the workbook layout; each item lands on the sheet
// matching its media kind.
var sheetOrder = []string{"Movies", "Series", "Anime", "Reading"}

var xlsxHeader = []string{
	"Title", "Type", "Status", "Progress", "Total", "Score",
	"Global Score", "Favorite", "Tags", "Notes", "Added",
}

// WriteXLSX writes items to w as an xlsx workbook with one sheet per media
// kind. Kinds with no items get no sheet; an empty library still produces a
// workbook with a single header-only sheet.
func WriteXLSX(w io.Writer, items []*models.MediaItem) error {
	f := excelize.NewFile()
	defer f.Close()

	groups := make(map[string][]*models.MediaItem, len(sheetOrder))
	for _, item := range items {
		sheet := sheetForItem(item)
		groups[sheet] = append(groups[sheet], item)
	}

	created := 0
	for _, sheet := range sheetOrder {
		group := groups[sheet]
		if len(group) == 0 {
			continue
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, group); err != nil {
			return err
		}
		created++
	}

	if created > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	} else {
		if err := f.SetSheetName("Sheet1", "Library"); err != nil {
			return fmt.Errorf("failed to rename default sheet: %w", err)
		}
		if err := writeSheet(f, "Library", nil); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, items []*models.MediaItem) error {
	for col, name := range xlsxHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header on %s: %w", sheet, err)
		}
	}

	for row, item := range items {
		for col, value := range rowValues(item) {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d on %s: %w", row+2, sheet, err)
			}
		}
	}

	// Titles are long; give them room.
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return fmt.Errorf("failed to size columns on %s: %w", sheet, err)
	}
	return nil
}

// rowValues maps an item onto the header columns. Nil slots stay blank so
// an absent score never shows up as zero.
func rowValues(item *models.MediaItem) []any {
	values := []any{
		item.Title,
		string(item.MediaType),
		string(item.Status),
		item.Progress,
		nil,
		nil,
		nil,
		item.Favorite,
		strings.Join(item.Tags, ", "),
		nil,
		item.CreatedAt.Format("2006-01-02"),
	}
	if item.TotalUnits != nil {
		values[4] = *item.TotalUnits
	}
	if item.Score != nil {
		values[5] = *item.Score
	}
	if item.GlobalScore != nil {
		values[6] = *item.GlobalScore
	}
	if item.Notes != nil {
		values[9] = *item.Notes
	}
	return values
}

func sheetForItem(item *models.MediaItem) string {
	switch item.MediaType {
	case models.MediaMovie:
		return "Movies"
	case models.MediaSeries:
		return "Series"
	case models.MediaAnime:
		return "Anime"
	default:
		return "Reading"
	}
}
