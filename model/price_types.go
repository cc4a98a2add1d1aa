package model

import "time"

// InternalRecord は自社価格表 (ファイルA) の正規化済み1行です。
type InternalRecord struct {
	Identifier string  `json:"identifier"`
	Price      float64 `json:"price"`
}

// CompetitorRecord は競合価格表 (ファイルB) の正規化済み1行です。
type CompetitorRecord struct {
	MfgCode         string  `json:"mfgCode"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

// PricePoint は集計の入力となる (識別子, 価格) の組です。
// Identifier が空の行は正規化に失敗した行です。Price が NaN の行は価格が欠損しています。
type PricePoint struct {
	Identifier string
	Price      float64
}

// AggregatedPrice は識別子ごとの平均価格です。
type AggregatedPrice struct {
	Identifier string  `json:"identifier"`
	MeanPrice  float64 `json:"meanPrice"`
}

// MatchedPair は両方の価格表に存在した識別子の比較結果です。
type MatchedPair struct {
	Identifier      string  `db:"identifier" json:"identifier"`
	PriceInternal   float64 `db:"price_internal" json:"priceInternal"`
	PriceCompetitor float64 `db:"price_competitor" json:"priceCompetitor"`
	PriceDiff       float64 `db:"price_diff" json:"priceDiff"`
}

// ComparisonResult は1回の比較処理の結果です。
type ComparisonResult struct {
	RunID            string        `json:"runId,omitempty"`
	InternalFile     string        `json:"internalFile"`
	CompetitorFile   string        `json:"competitorFile"`
	IdentifierColumn string        `json:"identifierColumn"`
	InternalRows     int           `json:"internalRows"`
	CompetitorRows   int           `json:"competitorRows"`
	InternalGroups   int           `json:"internalGroups"`
	CompetitorGroups int           `json:"competitorGroups"`
	MatchedCount     int           `json:"matchedCount"`
	TopItems         []MatchedPair `json:"topItems"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// ComparisonRun は履歴テーブルに保存される比較結果のヘッダーです。
type ComparisonRun struct {
	RunID            string `db:"run_id" json:"runId"`
	InternalFile     string `db:"internal_file" json:"internalFile"`
	CompetitorFile   string `db:"competitor_file" json:"competitorFile"`
	IdentifierColumn string `db:"identifier_column" json:"identifierColumn"`
	InternalRows     int    `db:"internal_rows" json:"internalRows"`
	CompetitorRows   int    `db:"competitor_rows" json:"competitorRows"`
	MatchedCount     int    `db:"matched_count" json:"matchedCount"`
	TopCount         int    `db:"top_count" json:"topCount"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
}

// RunItem は履歴に保存された上位品目の1行です。
type RunItem struct {
	RunID string `db:"run_id" json:"-"`
	Rank  int    `db:"rank" json:"rank"`
	MatchedPair
}

// RunDetail は履歴1件とその品目です。
type RunDetail struct {
	ComparisonRun
	Items []RunItem `json:"items"`
}
