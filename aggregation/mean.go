package aggregation

import (
	"math"
	"sort"

	"pricecmp/model"
)

// meanAcc は逐次平均です。合計を持たないので大きな価格でもオーバーフローしません。
type meanAcc struct {
	mean  float64
	count int
}

// MeanByIdentifier は識別子ごとに価格の平均を求めます。
// 識別子が空の行は除外します。NaN の価格はグループ内で無視し、全て NaN のグループは NaN になります。
// 結果は識別子の昇順です。
func MeanByIdentifier(points []model.PricePoint) []model.AggregatedPrice {
	groups := make(map[string]*meanAcc)
	var ids []string

	for _, p := range points {
		if p.Identifier == "" {
			continue
		}
		acc, ok := groups[p.Identifier]
		if !ok {
			acc = &meanAcc{}
			groups[p.Identifier] = acc
			ids = append(ids, p.Identifier)
		}
		if math.IsNaN(p.Price) {
			continue
		}
		acc.count++
		acc.mean += (p.Price - acc.mean) / float64(acc.count)
	}

	sort.Strings(ids)

	result := make([]model.AggregatedPrice, 0, len(ids))
	for _, id := range ids {
		acc := groups[id]
		mean := math.NaN()
		if acc.count > 0 {
			mean = acc.mean
		}
		result = append(result, model.AggregatedPrice{
			Identifier: id,
			MeanPrice:  mean,
		})
	}
	return result
}

// ToMap は集計結果を識別子 -> 平均価格のマップに変換します。
func ToMap(prices []model.AggregatedPrice) map[string]float64 {
	m := make(map[string]float64, len(prices))
	for _, p := range prices {
		m[p.Identifier] = p.MeanPrice
	}
	return m
}
