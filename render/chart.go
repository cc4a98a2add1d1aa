package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"pricecmp/mappers"
	"pricecmp/model"
)

// ChartLabels は棒グラフの系列名です。
type ChartLabels struct {
	Internal   string
	Competitor string
}

// チャートの寸法 (px)
const (
	chartWidth      = 1200
	chartHeight     = 640
	marginLeft      = 80
	marginRight     = 30
	marginTop       = 60
	marginBottom    = 150
	barGroupRatio   = 0.7
	gridLineCount   = 5
	internalColor   = "blue"
	competitorColor = "red"
	barOpacity      = 0.7
)

// RenderBarChartSVG は識別子ごとに自社価格と競合価格の2本の棒を並べたSVGを生成します。
// 品目がない場合は空文字列を返します。
func RenderBarChartSVG(items []model.MatchedPair, labels ChartLabels) string {
	if len(items) == 0 {
		return ""
	}

	plotW := float64(chartWidth - marginLeft - marginRight)
	plotH := float64(chartHeight - marginTop - marginBottom)
	yMax := niceCeil(maxPrice(items))

	groupW := plotW / float64(len(items))
	barW := groupW * barGroupRatio / 2
	yOf := func(v float64) float64 {
		return float64(marginTop) + plotH - v/yMax*plotH
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" class="price-chart" viewBox="0 0 %d %d" width="100%%" role="img">`, chartWidth, chartHeight))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="30" text-anchor="middle" font-size="18">Price Comparison by Manufacturing ID</text>`, chartWidth/2))

	// y軸グリッドと目盛
	for i := 0; i <= gridLineCount; i++ {
		v := yMax * float64(i) / gridLineCount
		y := yOf(v)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#000" stroke-opacity="0.3" stroke-width="0.5"/>`,
			marginLeft, y, chartWidth-marginRight, y))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" text-anchor="end" font-size="11">%s</text>`,
			marginLeft-6, y+4, formatTick(v)))
	}
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%.1f" stroke="#000"/>`, marginLeft, marginTop, marginLeft, yOf(0)))
	sb.WriteString(fmt.Sprintf(`<text x="20" y="%.1f" text-anchor="middle" font-size="13" transform="rotate(-90 20 %.1f)">Price (USD)</text>`,
		float64(marginTop)+plotH/2, float64(marginTop)+plotH/2))

	for i, item := range items {
		center := float64(marginLeft) + groupW*(float64(i)+0.5)
		writeBar(&sb, center-barW, barW, item.PriceInternal, yOf, internalColor)
		writeBar(&sb, center, barW, item.PriceCompetitor, yOf, competitorColor)

		ty := yOf(0) + 14
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end" font-size="11" transform="rotate(-45 %.1f %.1f)">%s</text>`,
			center, ty, center, ty, html.EscapeString(item.Identifier)))
	}

	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" text-anchor="middle" font-size="13">Manufacturing ID</text>`,
		float64(marginLeft)+plotW/2, chartHeight-10))

	// 凡例
	lx := chartWidth - marginRight - 160
	sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="14" height="14" fill="%s" fill-opacity="%.1f"/>`, lx, marginTop, internalColor, barOpacity))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="12">%s</text>`, lx+20, marginTop+12, html.EscapeString(labels.Internal)))
	sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="14" height="14" fill="%s" fill-opacity="%.1f"/>`, lx, marginTop+20, competitorColor, barOpacity))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="12">%s</text>`, lx+20, marginTop+32, html.EscapeString(labels.Competitor)))

	sb.WriteString(`</svg>`)
	return sb.String()
}

func writeBar(sb *strings.Builder, x, w, v float64, yOf func(float64) float64, color string) {
	h := 0.0
	if v > 0 {
		h = yOf(0) - yOf(v)
	}
	top := yOf(0) - h
	sb.WriteString(fmt.Sprintf(`<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.1f"/>`,
		x, top, w, h, color, barOpacity))
	sb.WriteString(fmt.Sprintf(`<text class="bar-label" x="%.1f" y="%.1f" text-anchor="middle" font-size="8">%s</text>`,
		x+w/2, top-3, mappers.FormatBarLabel(v)))
}

func maxPrice(items []model.MatchedPair) float64 {
	m := 0.0
	for _, it := range items {
		m = math.Max(m, math.Max(it.PriceInternal, it.PriceCompetitor))
	}
	return m
}

// niceCeil は目盛りが切りのいい値になるよう最大値を切り上げます。
func niceCeil(v float64) float64 {
	if v <= 0 {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, step := range []float64{1, 2, 2.5, 5, 10} {
		if c := step * exp; c >= v {
			return c
		}
	}
	return 10 * exp
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
