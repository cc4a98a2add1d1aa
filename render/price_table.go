package render

import (
	"fmt"
	"html"
	"strings"

	"pricecmp/mappers"
	"pricecmp/model"
)

// RenderComparisonTableHTML は上位品目の比較テーブルを生成します。
func RenderComparisonTableHTML(items []model.MatchedPair, identifierColumn string, labels ChartLabels) string {
	var sb strings.Builder

	sb.WriteString(`<table class="data-table comparison-table">`)
	sb.WriteString(`<thead><tr>`)
	sb.WriteString(`<th class="col-rank">#</th>`)
	sb.WriteString(fmt.Sprintf(`<th class="col-id">%s</th>`, html.EscapeString(identifierColumn)))
	sb.WriteString(fmt.Sprintf(`<th class="col-price">%s</th>`, html.EscapeString(labels.Internal)))
	sb.WriteString(fmt.Sprintf(`<th class="col-price">%s</th>`, html.EscapeString(labels.Competitor)))
	sb.WriteString(`<th class="col-diff">price_diff</th>`)
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	if len(items) == 0 {
		sb.WriteString(`<tr><td colspan="5">No matching identifiers.</td></tr>`)
	} else {
		for _, v := range mappers.ToMatchedPairViews(items) {
			diffClass := "diff-lower"
			if v.CompetitorIsCheaper {
				diffClass = "diff-higher"
			}
			sb.WriteString(`<tr>`)
			sb.WriteString(fmt.Sprintf(`<td class="right col-rank">%d</td>`, v.Rank))
			sb.WriteString(fmt.Sprintf(`<td class="col-id">%s</td>`, html.EscapeString(v.Identifier)))
			sb.WriteString(fmt.Sprintf(`<td class="right col-price">%s</td>`, v.FormattedInternal))
			sb.WriteString(fmt.Sprintf(`<td class="right col-price">%s</td>`, v.FormattedCompetitor))
			sb.WriteString(fmt.Sprintf(`<td class="right col-diff %s">%s</td>`, diffClass, v.FormattedDiff))
			sb.WriteString(`</tr>`)
		}
	}
	sb.WriteString(`</tbody></table>`)

	return sb.String()
}

// RenderPreviewTableHTML はアップロードされた表の先頭行をそのまま表示します。
func RenderPreviewTableHTML(t model.Table) string {
	var sb strings.Builder

	sb.WriteString(`<table class="data-table preview-table"><thead><tr>`)
	for _, c := range t.Columns {
		sb.WriteString(fmt.Sprintf(`<th>%s</th>`, html.EscapeString(c)))
	}
	sb.WriteString(`</tr></thead><tbody>`)
	if len(t.Rows) == 0 {
		sb.WriteString(fmt.Sprintf(`<tr><td colspan="%d">No rows.</td></tr>`, max(len(t.Columns), 1)))
	}
	for _, row := range t.Rows {
		sb.WriteString(`<tr>`)
		for _, cell := range row {
			class := ""
			if cell.Kind == model.CellNumber {
				class = ` class="right"`
			}
			sb.WriteString(fmt.Sprintf(`<td%s>%s</td>`, class, html.EscapeString(cell.Value)))
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table>`)

	return sb.String()
}
