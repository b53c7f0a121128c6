package cmd

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/formfill/internal/domain"
	"github.com/jonesrussell/north-cloud/formfill/internal/planner"
)

const (
	elementsSheet = "Elements"
	optionsSheet  = "Options"
)

var (
	elementHeaders = []string{"idx", "key", "type", "selector", "text_above", "text_below"}
	optionHeaders  = []string{"key", "position", "value", "text"}
)

// writeWorkbook saves tags to an xlsx file: one row per element, and one row
// per select option on a second sheet.
func writeWorkbook(path string, tags []domain.TagRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err = f.SetSheetName("Sheet1", elementsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err = f.NewSheet(optionsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	if err = writeRow(f, elementsSheet, 1, toCells(elementHeaders)); err != nil {
		return err
	}
	if err = writeRow(f, optionsSheet, 1, toCells(optionHeaders)); err != nil {
		return err
	}

	optionRow := 2
	for i, tag := range tags {
		row := []any{
			tag.Idx,
			tag.Key,
			string(tag.TagType),
			planner.Selector(string(tag.TagType), tag.Attributes),
			strings.Join(tag.TextAbove, "\n"),
			strings.Join(tag.TextBelow, "\n"),
		}
		if err = writeRow(f, elementsSheet, i+2, row); err != nil {
			return err
		}

		for pos, opt := range tag.SelectOptions {
			if err = writeRow(f, optionsSheet, optionRow, []any{tag.Key, pos, opt.Value, opt.Text}); err != nil {
				return err
			}
			optionRow++
		}
	}

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
