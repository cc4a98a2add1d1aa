package pricing

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"pricecmp/aggregation"
	"pricecmp/model"
	"pricecmp/normalize"
)

// DefaultTopN は比較結果として表示する品目数の既定値です。
const DefaultTopN = 20

// Columns は2つの価格表で使用する列名です。
type Columns struct {
	InternalPrice      string
	InternalIdentifier string
	InternalPartNumber string
	CompetitorCode     string
	CompetitorPrice    string
}

// DefaultColumns は既定の列名を返します。
func DefaultColumns() Columns {
	return Columns{
		InternalPrice:      "price",
		InternalIdentifier: "mfg_id",
		InternalPartNumber: "mfr_part",
		CompetitorCode:     "MFG Code",
		CompetitorPrice:    "Discounted Price",
	}
}

// Options は比較処理のオプションです。
type Options struct {
	Columns Columns
	TopN    int
}

// DefaultOptions は既定のオプションを返します。
func DefaultOptions() Options {
	return Options{Columns: DefaultColumns(), TopN: DefaultTopN}
}

// MissingColumnError は必須列が見つからないことを表します。
// AnyOf が true の場合、Columns のどれか1列があれば足ります。
type MissingColumnError struct {
	File    string
	Columns []string
	AnyOf   bool
}

func (e *MissingColumnError) Error() string {
	if len(e.Columns) == 1 {
		return fmt.Sprintf("Could not find %s column in %s.", e.Columns[0], e.File)
	}
	if e.AnyOf {
		return fmt.Sprintf("Could not find %s column in %s.", strings.Join(e.Columns, " or "), e.File)
	}
	return fmt.Sprintf("Could not find %s columns in %s.", strings.Join(e.Columns, " and "), e.File)
}

// ExtractInternal は自社価格表から (識別子, 価格) を取り出します。
// 識別子列があればそのまま使い、なければ品番列から識別子を抽出します。
// 2つ目の戻り値は表に表示する識別子列名です。品番から抽出した場合も識別子列名になります。
func ExtractInternal(t model.Table, cols Columns) ([]model.InternalRecord, string, error) {
	priceIdx, ok := t.Column(cols.InternalPrice)
	if !ok {
		return nil, "", &MissingColumnError{File: "your file", Columns: []string{cols.InternalPrice}}
	}

	var idOf func(model.Cell) (string, bool)
	idIdx, ok := t.Column(cols.InternalIdentifier)
	idColumn := cols.InternalIdentifier
	if ok {
		idOf = directIdentifier
	} else if idIdx, ok = t.Column(cols.InternalPartNumber); ok {
		idOf = normalize.ExtractMfgID
	} else {
		return nil, "", &MissingColumnError{
			File:    "your file",
			Columns: []string{cols.InternalIdentifier, cols.InternalPartNumber},
			AnyOf:   true,
		}
	}

	records := make([]model.InternalRecord, 0, len(t.Rows))
	for i := range t.Rows {
		id, _ := idOf(t.Cell(i, idIdx))
		records = append(records, model.InternalRecord{
			Identifier: id,
			Price:      normalize.ParsePrice(t.Cell(i, priceIdx)),
		})
	}
	return records, idColumn, nil
}

// directIdentifier は識別子列の値をそのまま使用します。数値セルも識別子として有効です。
func directIdentifier(c model.Cell) (string, bool) {
	if c.Kind == model.CellEmpty {
		return "", false
	}
	return c.Value, true
}

// ExtractCompetitor は競合価格表から (メーカーコード, 割引価格) を取り出します。
func ExtractCompetitor(t model.Table, cols Columns) ([]model.CompetitorRecord, error) {
	var missing []string
	codeIdx, ok := t.Column(cols.CompetitorCode)
	if !ok {
		missing = append(missing, cols.CompetitorCode)
	}
	priceIdx, ok := t.Column(cols.CompetitorPrice)
	if !ok {
		missing = append(missing, cols.CompetitorPrice)
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{File: "competitor file", Columns: missing}
	}

	records := make([]model.CompetitorRecord, 0, len(t.Rows))
	for i := range t.Rows {
		code, _ := normalize.CleanMfgCode(t.Cell(i, codeIdx))
		records = append(records, model.CompetitorRecord{
			MfgCode:         code,
			DiscountedPrice: normalize.ParsePrice(t.Cell(i, priceIdx)),
		})
	}
	return records, nil
}

func internalPoints(records []model.InternalRecord) []model.PricePoint {
	points := make([]model.PricePoint, len(records))
	for i, r := range records {
		points[i] = model.PricePoint{Identifier: r.Identifier, Price: r.Price}
	}
	return points
}

func competitorPoints(records []model.CompetitorRecord) []model.PricePoint {
	points := make([]model.PricePoint, len(records))
	for i, r := range records {
		points[i] = model.PricePoint{Identifier: r.MfgCode, Price: r.DiscountedPrice}
	}
	return points
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Join は2つの集計結果を識別子で内部結合します。
// どちらかの価格が欠損または有限でない行は除外します。順序は自社側の順序を維持します。
func Join(internal, competitor []model.AggregatedPrice) []model.MatchedPair {
	compMap := aggregation.ToMap(competitor)

	var pairs []model.MatchedPair
	for _, in := range internal {
		compPrice, ok := compMap[in.Identifier]
		if !ok {
			continue
		}
		if !isFinite(in.MeanPrice) || !isFinite(compPrice) {
			continue
		}
		pairs = append(pairs, model.MatchedPair{
			Identifier:      in.Identifier,
			PriceInternal:   in.MeanPrice,
			PriceCompetitor: compPrice,
			PriceDiff:       in.MeanPrice - compPrice,
		})
	}
	return pairs
}

// RankTop は価格差の絶対値の降順に並べ、上位 n 件を返します。
// 絶対値が同じ場合は元の順序を維持します。入力スライスは変更しません。
func RankTop(pairs []model.MatchedPair, n int) []model.MatchedPair {
	ranked := make([]model.MatchedPair, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].PriceDiff) > math.Abs(ranked[j].PriceDiff)
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Compare は2つの価格表を正規化・集計・結合し、価格差の大きい順に上位品目を返します。
func Compare(internal, competitor model.Table, opts Options) (*model.ComparisonResult, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	internalRecords, idColumn, err := ExtractInternal(internal, opts.Columns)
	if err != nil {
		return nil, err
	}
	competitorRecords, err := ExtractCompetitor(competitor, opts.Columns)
	if err != nil {
		return nil, err
	}

	internalAgg := aggregation.MeanByIdentifier(internalPoints(internalRecords))
	competitorAgg := aggregation.MeanByIdentifier(competitorPoints(competitorRecords))

	matched := Join(internalAgg, competitorAgg)
	top := RankTop(matched, opts.TopN)
	if top == nil {
		top = []model.MatchedPair{}
	}

	return &model.ComparisonResult{
		InternalFile:     internal.Name,
		CompetitorFile:   competitor.Name,
		IdentifierColumn: idColumn,
		InternalRows:     len(internal.Rows),
		CompetitorRows:   len(competitor.Rows),
		InternalGroups:   len(internalAgg),
		CompetitorGroups: len(competitorAgg),
		MatchedCount:     len(matched),
		TopItems:         top,
		CreatedAt:        time.Now(),
	}, nil
}
