// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/trial-harvester/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StorageConfig{DBPath: filepath.Join(t.TempDir(), "trials.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fullRow() types.FlatRow {
	return types.FlatRow{
		TrialID:               "2010-000123-45",
		Title:                 "A study of widgets in adults",
		URL:                   "https://register.test/trial/2010-000123-45/results",
		Status:                "completed",
		Conditions:            "Essential hypertension",
		Sponsor:               "Acme Pharma GmbH",
		Sex:                   "Male, Female",
		Age:                   "Adults",
		Enrollment:            "312",
		FunderType:            "Commercial",
		StudyType:             "EEA CTA",
		StartDate:             "2010-05-01",
		PrimaryCompletionDate: "2011-12-01",
		CompletionDate:        "2012-03-01",
		FirstPosted:           "2010-04-12",
		ResultsFirstPosted:    "2012-06-30",
		LastUpdatePosted:      "2013-01-15",
		Locations:             "Germany",
		Disease:               "Cardiology",
		Phases: []types.Phase{
			{Label: "Human pharmacology (Phase I)", Value: "No"},
			{Label: "Therapeutic exploratory (Phase II)", Value: "Yes"},
		},
		Protocols: []types.ProtocolRef{
			{Country: "DE", URL: "https://register.test/trial/2010-000123-45/DE", Status: "completed"},
		},
	}
}

func TestStore_PutAndRowsRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, fullRow()))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fullRow(), rows[0])
}

func TestStore_PutOverwritesByTrialID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, fullRow()))

	updated := fullRow()
	updated.Status = "prematurely ended"
	updated.CompletionDate = ""
	require.NoError(t, s.Put(ctx, updated))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "prematurely ended", rows[0].Status)

	// The replace is wholesale: cleared fields come back empty.
	assert.Empty(t, rows[0].CompletionDate)
}

func TestStore_PutRejectsEmptyTrialID(t *testing.T) {
	s := openTestStore(t)

	err := s.Put(context.Background(), types.FlatRow{Title: "no id"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty trial_id")
}

func TestStore_PutManyOrderedByTrialID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := fullRow()
	b.TrialID = "2011-000999-01"
	a := fullRow()

	require.NoError(t, s.PutMany(ctx, []types.FlatRow{b, a}))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2010-000123-45", rows[0].TrialID)
	assert.Equal(t, "2011-000999-01", rows[1].TrialID)
}

func TestStore_PutManyIsAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := fullRow()
	bad.TrialID = ""

	err := s.PutMany(ctx, []types.FlatRow{fullRow(), bad})
	require.Error(t, err)

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestStore_SparseRowRoundtrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sparse := types.FlatRow{TrialID: "2012-000001-10", Title: "card only"}
	require.NoError(t, s.Put(ctx, sparse))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sparse, rows[0])
	assert.Nil(t, rows[0].Phases)
	assert.Nil(t, rows[0].Protocols)
}
