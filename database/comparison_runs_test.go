package database_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecmp/database"
	"pricecmp/loader"
	"pricecmp/model"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := loader.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(id string, created time.Time) *model.ComparisonResult {
	return &model.ComparisonResult{
		RunID:            id,
		InternalFile:     "rd.xlsx",
		CompetitorFile:   "comp.xlsx",
		IdentifierColumn: "mfg_id",
		InternalRows:     3,
		CompetitorRows:   4,
		MatchedCount:     2,
		TopItems: []model.MatchedPair{
			{Identifier: "B2", PriceInternal: 40, PriceCompetitor: 75, PriceDiff: -35},
			{Identifier: "A1", PriceInternal: 100, PriceCompetitor: 90, PriceDiff: 10},
		},
		CreatedAt: created,
	}
}

func save(t *testing.T, db *sqlx.DB, result *model.ComparisonResult) {
	t.Helper()
	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, database.SaveComparisonRunInTx(tx, result))
	require.NoError(t, tx.Commit())
}

func TestSaveAndGetRunDetail(t *testing.T) {
	db := openTestDB(t)
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.Local)
	save(t, db, sampleResult("run-1", created))

	detail, err := database.GetRunDetail(db, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "rd.xlsx", detail.InternalFile)
	assert.Equal(t, 2, detail.TopCount)
	assert.Equal(t, 2, detail.MatchedCount)

	require.Len(t, detail.Items, 2)
	assert.Equal(t, 1, detail.Items[0].Rank)
	assert.Equal(t, "B2", detail.Items[0].Identifier)
	assert.Equal(t, -35.0, detail.Items[0].PriceDiff)
	assert.Equal(t, "A1", detail.Items[1].Identifier)

	parsed, err := database.ParseCreatedAt(detail.CreatedAt)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(created))
}

func TestSaveRunWithoutItems(t *testing.T) {
	db := openTestDB(t)
	result := sampleResult("empty", time.Now())
	result.TopItems = nil
	result.MatchedCount = 0
	save(t, db, result)

	detail, err := database.GetRunDetail(db, "empty")
	require.NoError(t, err)
	assert.NotNil(t, detail.Items)
	assert.Empty(t, detail.Items)
}

func TestGetRunDetail_NotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := database.GetRunDetail(db, "missing")
	assert.True(t, errors.Is(err, database.ErrRunNotFound))
}

func TestGetRecentRuns_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local)
	save(t, db, sampleResult("old", base))
	save(t, db, sampleResult("new", base.Add(time.Hour)))
	save(t, db, sampleResult("mid", base.Add(time.Minute)))

	runs, err := database.GetRecentRuns(db, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.Equal(t, "mid", runs[1].RunID)
}

func TestDeleteRunInTx(t *testing.T) {
	db := openTestDB(t)
	save(t, db, sampleResult("run-1", time.Now()))

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, database.DeleteRunInTx(tx, "run-1"))
	require.NoError(t, tx.Commit())

	_, err = database.GetRunDetail(db, "run-1")
	assert.True(t, errors.Is(err, database.ErrRunNotFound))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM comparison_items`))
	assert.Zero(t, count)

	tx, err = db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	assert.True(t, errors.Is(database.DeleteRunInTx(tx, "run-1"), database.ErrRunNotFound))
}

func TestPruneRunsInTx(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local)
	for i, id := range []string{"r1", "r2", "r3", "r4"} {
		save(t, db, sampleResult(id, base.Add(time.Duration(i)*time.Minute)))
	}

	tx, err := db.Beginx()
	require.NoError(t, err)
	pruned, err := database.PruneRunsInTx(tx, 2)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(2), pruned)

	runs, err := database.GetRecentRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r4", runs[0].RunID)
	assert.Equal(t, "r3", runs[1].RunID)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM comparison_items`))
	assert.Equal(t, 4, count)
}
