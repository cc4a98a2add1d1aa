package mappers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pricecmp/model"
)

// MatchedPairView は比較結果1行の画面表示用です。
type MatchedPairView struct {
	model.MatchedPair
	Rank                int    `json:"rank"`
	FormattedInternal   string `json:"formattedInternal"`
	FormattedCompetitor string `json:"formattedCompetitor"`
	FormattedDiff       string `json:"formattedDiff"`
	CompetitorIsCheaper bool   `json:"competitorIsCheaper"`
}

// ToMatchedPairViews は上位品目を表示用に変換します。Rank は1始まりです。
func ToMatchedPairViews(pairs []model.MatchedPair) []MatchedPairView {
	views := make([]MatchedPairView, 0, len(pairs))
	for i, p := range pairs {
		views = append(views, MatchedPairView{
			MatchedPair:         p,
			Rank:                i + 1,
			FormattedInternal:   FormatDollars(p.PriceInternal),
			FormattedCompetitor: FormatDollars(p.PriceCompetitor),
			FormattedDiff:       FormatSignedDollars(p.PriceDiff),
			CompetitorIsCheaper: p.PriceDiff > 0,
		})
	}
	return views
}

// FormatDollars は金額を "$1,234.56" 形式にします。
func FormatDollars(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	out := "$" + sb.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatSignedDollars は差額を符号付きで表示します。
func FormatSignedDollars(v float64) string {
	if v > 0 {
		return "+" + FormatDollars(v)
	}
	return FormatDollars(v)
}

// FormatBarLabel は棒グラフのラベル ("$123") です。
func FormatBarLabel(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
