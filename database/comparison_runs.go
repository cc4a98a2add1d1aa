package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pricecmp/model"

	"github.com/jmoiron/sqlx"
)

// DBTX は *sqlx.DB と *sqlx.Tx の共通インターフェースです。
type DBTX interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	NamedExec(query string, arg interface{}) (sql.Result, error)
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// ErrRunNotFound は指定の比較履歴が存在しないことを表します。
var ErrRunNotFound = errors.New("comparison run not found")

// timeLayout は created_at の保存形式です。文字列比較で時系列順になります。
const timeLayout = "2006-01-02 15:04:05.000"

// SaveComparisonRunInTx は比較結果のヘッダーと上位品目をトランザクション内で保存します。
func SaveComparisonRunInTx(tx *sqlx.Tx, result *model.ComparisonResult) error {
	if result.RunID == "" {
		return fmt.Errorf("SaveComparisonRunInTx: run id is empty")
	}
	run := model.ComparisonRun{
		RunID:            result.RunID,
		InternalFile:     result.InternalFile,
		CompetitorFile:   result.CompetitorFile,
		IdentifierColumn: result.IdentifierColumn,
		InternalRows:     result.InternalRows,
		CompetitorRows:   result.CompetitorRows,
		MatchedCount:     result.MatchedCount,
		TopCount:         len(result.TopItems),
		CreatedAt:        result.CreatedAt.Format(timeLayout),
	}
	const qRun = `
		INSERT INTO comparison_runs (
			run_id, internal_file, competitor_file, identifier_column,
			internal_rows, competitor_rows, matched_count, top_count, created_at
		) VALUES (
			:run_id, :internal_file, :competitor_file, :identifier_column,
			:internal_rows, :competitor_rows, :matched_count, :top_count, :created_at
		)`
	if _, err := tx.NamedExec(qRun, run); err != nil {
		return fmt.Errorf("failed to insert comparison run %s: %w", run.RunID, err)
	}

	if len(result.TopItems) == 0 {
		return nil
	}

	items := make([]model.RunItem, 0, len(result.TopItems))
	for i, p := range result.TopItems {
		items = append(items, model.RunItem{RunID: run.RunID, Rank: i + 1, MatchedPair: p})
	}
	const qItems = `
		INSERT INTO comparison_items (
			run_id, rank, identifier, price_internal, price_competitor, price_diff
		) VALUES (
			:run_id, :rank, :identifier, :price_internal, :price_competitor, :price_diff
		)`
	// NamedExecでスライスをバルクインサート
	if _, err := tx.NamedExec(qItems, items); err != nil {
		return fmt.Errorf("failed to bulk insert comparison items for %s: %w", run.RunID, err)
	}
	return nil
}

// GetRecentRuns は新しい順に最大 limit 件の比較履歴を返します。
func GetRecentRuns(dbtx DBTX, limit int) ([]model.ComparisonRun, error) {
	runs := []model.ComparisonRun{}
	const q = `
		SELECT run_id, internal_file, competitor_file, identifier_column,
			internal_rows, competitor_rows, matched_count, top_count, created_at
		FROM comparison_runs
		ORDER BY created_at DESC, run_id
		LIMIT ?`
	if err := dbtx.Select(&runs, q, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent comparison runs: %w", err)
	}
	return runs, nil
}

// GetRunDetail は比較履歴1件と上位品目を順位順に返します。
func GetRunDetail(dbtx DBTX, runID string) (*model.RunDetail, error) {
	var detail model.RunDetail
	const qRun = `
		SELECT run_id, internal_file, competitor_file, identifier_column,
			internal_rows, competitor_rows, matched_count, top_count, created_at
		FROM comparison_runs WHERE run_id = ?`
	if err := dbtx.Get(&detail.ComparisonRun, qRun, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get comparison run %s: %w", runID, err)
	}

	detail.Items = []model.RunItem{}
	const qItems = `
		SELECT run_id, rank, identifier, price_internal, price_competitor, price_diff
		FROM comparison_items WHERE run_id = ? ORDER BY rank`
	if err := dbtx.Select(&detail.Items, qItems, runID); err != nil {
		return nil, fmt.Errorf("failed to get comparison items for %s: %w", runID, err)
	}
	return &detail, nil
}

// DeleteRunInTx は比較履歴と品目を削除します。
func DeleteRunInTx(tx *sqlx.Tx, runID string) error {
	if _, err := tx.Exec(`DELETE FROM comparison_items WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete comparison items for %s: %w", runID, err)
	}
	res, err := tx.Exec(`DELETE FROM comparison_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete comparison run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// PruneRunsInTx は新しい順に keep 件を残して古い履歴を削除します。
func PruneRunsInTx(tx *sqlx.Tx, keep int) (int64, error) {
	const qItems = `
		DELETE FROM comparison_items WHERE run_id NOT IN (
			SELECT run_id FROM comparison_runs ORDER BY created_at DESC, run_id LIMIT ?
		)`
	if _, err := tx.Exec(qItems, keep); err != nil {
		return 0, fmt.Errorf("failed to prune comparison items: %w", err)
	}
	const qRuns = `
		DELETE FROM comparison_runs WHERE run_id NOT IN (
			SELECT run_id FROM comparison_runs ORDER BY created_at DESC, run_id LIMIT ?
		)`
	res, err := tx.Exec(qRuns, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune comparison runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// ParseCreatedAt は保存された created_at を time.Time に戻します。
func ParseCreatedAt(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.Local)
}
