package model

import "strings"

// CellKind はセルの値の種類です。
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellOther
)

// Cell はアップロードされた表の1セルです。
// 数値セルや空セルはテキストとして扱わないため、値と種類を分けて保持します。
type Cell struct {
	Value string   `json:"value"`
	Kind  CellKind `json:"kind"`
}

// TextCell はテキストセルを作成します。空文字列の場合は空セルになります。
func TextCell(v string) Cell {
	if v == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Value: v, Kind: CellText}
}

// IsText はセルがテキストかどうかを返します。
func (c Cell) IsText() bool {
	return c.Kind == CellText
}

// Table はアップロードされた1ファイル分の表データです。先頭行をヘッダーとして扱います。
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

// Column はヘッダー名から列インデックスを取得します。前後の空白は無視します。
func (t *Table) Column(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i, true
		}
	}
	return -1, false
}

// Cell は行 row の列 col の値を返します。範囲外は空セルです。
func (t *Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Cell{Kind: CellEmpty}
	}
	return t.Rows[row][col]
}

// Head は先頭 n 行だけを持つ表のコピーを返します。
func (t *Table) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return Table{
		Name:    t.Name,
		Columns: t.Columns,
		Rows:    t.Rows[:n],
	}
}
