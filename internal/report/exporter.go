package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Exporter writes a report run to disk as indented JSON.
type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

// Snapshot is the serialized form of one completed report run.
type Snapshot struct {
	Report          string    `json:"report"`
	GeneratedAt     time.Time `json:"generatedAt"`
	StartDate       string    `json:"startDate,omitempty"`
	EndDate         string    `json:"endDate,omitempty"`
	Subjects        []string  `json:"subjects"`
	Rows            []Row     `json:"rows"`
	FailedProviders []string  `json:"failedProviders"`
}

// NewSnapshot captures a finished aggregation cycle for export or storage.
func NewSnapshot(def Definition, q Query, out Outcome) Snapshot {
	snap := Snapshot{
		Report:          def.Name,
		GeneratedAt:     time.Now(),
		Subjects:        q.Subjects,
		Rows:            out.Rows,
		FailedProviders: []string{},
	}
	if !q.Start.IsZero() {
		snap.StartDate = q.Start.Format("2006-01-02")
	}
	if !q.End.IsZero() {
		snap.EndDate = q.End.Format("2006-01-02")
	}
	for _, kind := range def.Providers {
		if _, ok := out.Failed[kind]; ok {
			snap.FailedProviders = append(snap.FailedProviders, string(kind))
		}
	}
	return snap
}

func (e *Exporter) ExportJSON(snap Snapshot, filename string) error {
	data, err := json.MarshalIndent(snap, "", "\t")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(e.OutputDir, filename), data, 0644)
}

// FormatValue renders a row cell for display. Integers stay plain, floats
// drop trailing zeros, the rank sentinel passes through untouched.
func FormatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
