package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Afrawles/teampulse/internal/report"
)

// Store persists completed report runs for later inspection. The aggregation
// core itself keeps no state; history is written only after a run finishes.
type Store struct {
	db *sql.DB
}

// Run is one persisted report run.
type Run struct {
	ID              string
	Report          string
	StartDate       string
	EndDate         string
	Subjects        []string
	RowCount        int
	FailedProviders []string
	CreatedAt       time.Time
}

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		report TEXT,
		start_date TEXT,
		end_date TEXT,
		subjects TEXT,
		row_count INTEGER,
		failed_providers TEXT,
		rows_json TEXT,
		created_at DATETIME
	);
	`
	if _, err := db.Exec(runsTable); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a finished report snapshot and returns its run ID.
func (s *Store) SaveRun(snap report.Snapshot) (string, error) {
	rowsJSON, err := json.Marshal(snap.Rows)
	if err != nil {
		return "", fmt.Errorf("failed to encode rows: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.Exec(
		`INSERT INTO runs (id, report, start_date, end_date, subjects, row_count, failed_providers, rows_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		snap.Report,
		snap.StartDate,
		snap.EndDate,
		strings.Join(snap.Subjects, ","),
		len(snap.Rows),
		strings.Join(snap.FailedProviders, ","),
		string(rowsJSON),
		snap.GeneratedAt.UTC(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, report, start_date, end_date, subjects, row_count, failed_providers, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var subjects, failed string
		if err := rows.Scan(&r.ID, &r.Report, &r.StartDate, &r.EndDate, &subjects, &r.RowCount, &failed, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Subjects = splitNonEmpty(subjects)
		r.FailedProviders = splitNonEmpty(failed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunRows loads the stored row set of one run.
func (s *Store) GetRunRows(id string) ([]report.Row, error) {
	var rowsJSON string
	err := s.db.QueryRow(`SELECT rows_json FROM runs WHERE id = ?`, id).Scan(&rowsJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, err
	}

	var out []report.Row
	if err := json.Unmarshal([]byte(rowsJSON), &out); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	return out, nil
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
