// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists flat trial rows in SQLite, keyed by trial ID.
// Writes are idempotent overwrites, so re-running a harvest converges
// on the same rows.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/trial-harvester/pkg/types"
)

// allColumns is the canonical schema plus the card-sourced disease
// field that rides along with it.
var allColumns = append(append([]string{}, types.Columns...), "disease")

// Store manages the trials SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the trials database at cfg.DBPath.
func Open(cfg types.StorageConfig) (*Store, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	defs := make([]string, len(allColumns))
	for i, col := range allColumns {
		if col == "trial_id" {
			defs[i] = "trial_id TEXT PRIMARY KEY"
			continue
		}
		defs[i] = col + " TEXT"
	}
	_, err := s.db.Exec("CREATE TABLE IF NOT EXISTS trials (" + strings.Join(defs, ", ") + ")")
	return err
}

// Put upserts one row. The record key is trial_id; a second put for the
// same trial replaces the stored row wholesale.
func (s *Store) Put(ctx context.Context, row types.FlatRow) error {
	query, args, err := insertRow(row)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("storing trial %s: %w", row.TrialID, err)
	}
	return nil
}

// PutMany upserts rows in one transaction: either every row lands or
// none does.
func (s *Store) PutMany(ctx context.Context, rows []types.FlatRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		query, args, err := insertRow(row)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("storing trial %s: %w", row.TrialID, err)
		}
	}
	return tx.Commit()
}

// insertRow builds the upsert statement for one row. Scalar fields
// store NULL when empty; list-valued fields store their JSON form.
func insertRow(row types.FlatRow) (string, []any, error) {
	if row.TrialID == "" {
		return "", nil, fmt.Errorf("row has empty trial_id")
	}

	values := row.Map()
	args := make([]any, len(allColumns))
	for i, col := range allColumns {
		switch v := values[col].(type) {
		case string:
			if v == "" {
				args[i] = nil
			} else {
				args[i] = v
			}
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return "", nil, fmt.Errorf("marshaling %s for trial %s: %w", col, row.TrialID, err)
			}
			args[i] = string(data)
		}
	}

	query := "INSERT OR REPLACE INTO trials (" + strings.Join(allColumns, ", ") +
		") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(allColumns)), ", ") + ")"
	return query, args, nil
}

// Rows returns every stored row ordered by trial_id.
func (s *Store) Rows(ctx context.Context) ([]types.FlatRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+strings.Join(allColumns, ", ")+" FROM trials ORDER BY trial_id")
	if err != nil {
		return nil, fmt.Errorf("querying trials: %w", err)
	}
	defer rows.Close()

	var out []types.FlatRow
	for rows.Next() {
		scanned := make([]sql.NullString, len(allColumns))
		dest := make([]any, len(allColumns))
		for i := range scanned {
			dest[i] = &scanned[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning trial row: %w", err)
		}

		var row types.FlatRow
		for i, col := range allColumns {
			if !scanned[i].Valid {
				continue
			}
			if err := setField(&row, col, scanned[i].String); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func setField(row *types.FlatRow, col, value string) error {
	switch col {
	case "phases":
		if err := json.Unmarshal([]byte(value), &row.Phases); err != nil {
			return fmt.Errorf("decoding phases for %s: %w", row.TrialID, err)
		}
	case "protocols":
		if err := json.Unmarshal([]byte(value), &row.Protocols); err != nil {
			return fmt.Errorf("decoding protocols for %s: %w", row.TrialID, err)
		}
	case "trial_id":
		row.TrialID = value
	case "title":
		row.Title = value
	case "url":
		row.URL = value
	case "acronym":
		row.Acronym = value
	case "status":
		row.Status = value
	case "summary":
		row.Summary = value
	case "results":
		row.Results = value
	case "conditions":
		row.Conditions = value
	case "interventions":
		row.Interventions = value
	case "primary_outcome":
		row.PrimaryOutcome = value
	case "secondary_outcome":
		row.SecondaryOutcome = value
	case "other_outcome":
		row.OtherOutcome = value
	case "sponsor":
		row.Sponsor = value
	case "collaborators":
		row.Collaborators = value
	case "sex":
		row.Sex = value
	case "age":
		row.Age = value
	case "enrollment":
		row.Enrollment = value
	case "funder_type":
		row.FunderType = value
	case "study_type":
		row.StudyType = value
	case "study_design":
		row.StudyDesign = value
	case "other_ids":
		row.OtherIDs = value
	case "start_date":
		row.StartDate = value
	case "primary_completion_date":
		row.PrimaryCompletionDate = value
	case "completion_date":
		row.CompletionDate = value
	case "first_posted":
		row.FirstPosted = value
	case "results_first_posted":
		row.ResultsFirstPosted = value
	case "last_update_posted":
		row.LastUpdatePosted = value
	case "locations":
		row.Locations = value
	case "study_documents":
		row.StudyDocuments = value
	case "disease":
		row.Disease = value
	}
	return nil
}
