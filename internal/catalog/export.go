package catalog

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-courses/internal/locale"
)

const (
	coverageSheet = "Coverage"
	summarySheet  = "Summary"
)

// ExportCoverage writes a translation coverage workbook: one row per message
// key, one column per locale, with untranslated cells highlighted, plus a
// per-locale summary sheet.
func ExportCoverage(store *locale.Store, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", coverageSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	missingStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	locales := store.Locales()
	keys, values := coverage(store, locales)

	header := append([]any{"Key"}, toAny(locales)...)
	if err := f.SetSheetRow(coverageSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(coverageSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	translated := make([]int, len(locales))
	for r, key := range keys {
		row := r + 2
		if err := f.SetCellValue(coverageSheet, cell(1, row), key); err != nil {
			return err
		}
		for c, loc := range locales {
			ref := cell(c+2, row)
			v, ok := values[loc][key]
			if ok && v != "" {
				translated[c]++
				if err := f.SetCellValue(coverageSheet, ref, v); err != nil {
					return err
				}
				continue
			}
			if err := f.SetCellStyle(coverageSheet, ref, ref, missingStyle); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(coverageSheet, "A", "A", 60); err != nil {
		return err
	}

	summary := []any{"Locale", "Translated", "Missing", "Coverage"}
	if err := f.SetSheetRow(summarySheet, "A1", &summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "D1", headerStyle); err != nil {
		return err
	}
	for i, loc := range locales {
		pct := 0.0
		if len(keys) > 0 {
			pct = float64(translated[i]) / float64(len(keys))
		}
		row := []any{loc, translated[i], len(keys) - translated[i], pct}
		if err := f.SetSheetRow(summarySheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// coverage returns the union of flattened keys (first-seen order across the
// sorted locales) and each locale's values.
func coverage(store *locale.Store, locales []string) ([]string, map[string]map[string]string) {
	var keys []string
	seen := make(map[string]bool)
	values := make(map[string]map[string]string, len(locales))
	for _, loc := range locales {
		b, _ := store.Bundle(loc)
		values[loc] = make(map[string]string)
		for _, e := range b.Root().Flatten() {
			values[loc][e.Key] = e.Value
			if !seen[e.Key] {
				seen[e.Key] = true
				keys = append(keys, e.Key)
			}
		}
	}
	return keys, values
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
