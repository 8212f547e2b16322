package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ExcelExporter struct {
	OutputDir string
}

func NewExcelExporter(outputDir string) *ExcelExporter {
	return &ExcelExporter{OutputDir: outputDir}
}

// Export writes one workbook: a Dashboard sheet with the run summary, then a
// data sheet per source when the report distinguishes sources, otherwise a
// single data sheet.
func (e *ExcelExporter) Export(def Definition, snap Snapshot) error {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("%s_%s.xlsx", def.Name, timestamp))

	f := excelize.NewFile()
	defer f.Close()

	if err := e.createDashboardSheet(f, "Dashboard", def, snap); err != nil {
		return fmt.Errorf("failed to create dashboard: %w", err)
	}

	for _, group := range groupRows(def, snap.Rows) {
		sheetName := sanitizeSheetName(group.name)
		if err := e.createDataSheet(f, sheetName, def, group.rows); err != nil {
			return fmt.Errorf("failed to create sheet for %s: %w", group.name, err)
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		//NOTE:
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save excel file: %w", err)
	}

	return nil
}

type rowGroup struct {
	name string
	rows []Row
}

// groupRows splits rows by their "source" value when the report carries one.
func groupRows(def Definition, rows []Row) []rowGroup {
	hasSource := false
	for _, col := range def.Columns {
		if col.Key == "source" {
			hasSource = true
			break
		}
	}
	if !hasSource {
		return []rowGroup{{name: "Data", rows: rows}}
	}

	bySource := make(map[string][]Row)
	names := []string{}
	for _, row := range rows {
		source, _ := row["source"].(string)
		if source == "" {
			source = "Unknown"
		}
		if _, seen := bySource[source]; !seen {
			names = append(names, source)
		}
		bySource[source] = append(bySource[source], row)
	}
	sort.Strings(names)

	groups := make([]rowGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, rowGroup{name: name, rows: bySource[name]})
	}
	return groups
}

func (e *ExcelExporter) createDashboardSheet(f *excelize.File, sheetName string, def Definition, snap Snapshot) error {
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})

	totalStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#B4C7E7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})

	title := cases.Title(language.English)

	f.SetCellValue(sheetName, "A1", "Report:")
	f.SetCellValue(sheetName, "B1", def.Title)
	f.SetCellValue(sheetName, "A2", "Date From:")
	f.SetCellValue(sheetName, "B2", snap.StartDate)
	f.SetCellValue(sheetName, "A3", "Date to:")
	f.SetCellValue(sheetName, "B3", snap.EndDate)
	f.SetCellValue(sheetName, "A4", "Generated:")
	f.SetCellValue(sheetName, "B4", snap.GeneratedAt.Format("02-01-06 15:04"))

	row := 6
	f.SetCellValue(sheetName, cellName(1, row), "Provider")
	f.SetCellStyle(sheetName, cellName(1, row), cellName(1, row), headerStyle)
	f.SetCellValue(sheetName, cellName(2, row), "Status")
	f.SetCellStyle(sheetName, cellName(2, row), cellName(2, row), headerStyle)
	row++

	failed := make(map[string]bool, len(snap.FailedProviders))
	for _, kind := range snap.FailedProviders {
		failed[kind] = true
	}
	for _, kind := range def.Providers {
		status := "OK"
		if failed[string(kind)] {
			status = "Unavailable"
		}
		f.SetCellValue(sheetName, cellName(1, row), title.String(string(kind)))
		f.SetCellValue(sheetName, cellName(2, row), status)
		row++
	}

	row++
	f.SetCellValue(sheetName, cellName(1, row), "Total rows")
	f.SetCellStyle(sheetName, cellName(1, row), cellName(1, row), totalStyle)
	f.SetCellValue(sheetName, cellName(2, row), len(snap.Rows))
	f.SetCellStyle(sheetName, cellName(2, row), cellName(2, row), totalStyle)

	f.SetColWidth(sheetName, "A", "A", 15)
	f.SetColWidth(sheetName, "B", "B", 25)

	return nil
}

func (e *ExcelExporter) createDataSheet(f *excelize.File, sheetName string, def Definition, rows []Row) error {
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "#000000", Style: 1},
			{Type: "right", Color: "#000000", Style: 1},
			{Type: "top", Color: "#000000", Style: 1},
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, cellName(1, 1), "#")
	f.SetCellStyle(sheetName, cellName(1, 1), cellName(1, 1), headerStyle)
	for i, col := range def.Columns {
		cell := cellName(i+2, 1)
		f.SetCellValue(sheetName, cell, col.Header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, dataRow := range rows {
		row := i + 2
		f.SetCellValue(sheetName, cellName(1, row), i+1)
		for j, col := range def.Columns {
			f.SetCellValue(sheetName, cellName(j+2, row), dataRow[col.Key])
		}
	}

	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", columnLetter(len(def.Columns)+1), 20)

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", columnLetter(col), row)
}

func columnLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

func sanitizeSheetName(name string) string {
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, "?", "")
	name = strings.ReplaceAll(name, "*", "")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	if len(name) > 31 {
		name = name[:31]
	}

	return name
}
