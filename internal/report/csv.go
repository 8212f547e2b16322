package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

// Export writes the row table and a small summary sheet as two CSV files.
func (e *CSVExporter) Export(def Definition, snap Snapshot) error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	if err := e.exportRowList(def, snap, timestamp); err != nil {
		return fmt.Errorf("failed to export row list: %w", err)
	}

	if err := e.exportSummary(def, snap, timestamp); err != nil {
		return fmt.Errorf("failed to export summary: %w", err)
	}

	return nil
}

func (e *CSVExporter) exportRowList(def Definition, snap Snapshot, timestamp string) error {
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("%s_%s_rows.csv", def.Name, timestamp))
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"#"}
	for _, col := range def.Columns {
		header = append(header, col.Header)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, row := range snap.Rows {
		record := []string{fmt.Sprintf("%d", i+1)}
		for _, col := range def.Columns {
			record = append(record, FormatValue(row[col.Key]))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func (e *CSVExporter) exportSummary(def Definition, snap Snapshot, timestamp string) error {
	filename := filepath.Join(e.OutputDir, fmt.Sprintf("%s_%s_summary.csv", def.Name, timestamp))
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	meta := [][]string{
		{"Report:", def.Title},
		{"Date From:", snap.StartDate},
		{"Date to:", snap.EndDate},
		{"Generated:", snap.GeneratedAt.Format("02-01-06 15:04")},
		{""},
	}
	for _, row := range meta {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{"Provider", "Status"}); err != nil {
		return err
	}

	failed := make(map[string]bool, len(snap.FailedProviders))
	for _, kind := range snap.FailedProviders {
		failed[kind] = true
	}
	for _, kind := range def.Providers {
		status := "ok"
		if failed[string(kind)] {
			status = "unavailable"
		}
		if err := writer.Write([]string{string(kind), status}); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{""}); err != nil {
		return err
	}
	return writer.Write([]string{"Rows", fmt.Sprintf("%d", len(snap.Rows))})
}
