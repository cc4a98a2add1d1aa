package parsers_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"

	"pricecmp/model"
	"pricecmp/parsers"
)

func TestParseCSV_SkipsBOM(t *testing.T) {
	in := "\xEF\xBB\xBFmfg_id, price \nA1,\"$1,100\"\nB2,\n"

	table, err := parsers.ParseCSV(strings.NewReader(in), "rd.csv", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, []string{"mfg_id", "price"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, model.Cell{Value: "$1,100", Kind: model.CellText}, table.Rows[0][1])
	assert.Equal(t, model.CellEmpty, table.Rows[1][1].Kind)
}

func TestParseCSV_ShortRowsArePadded(t *testing.T) {
	table, err := parsers.ParseCSV(strings.NewReader("a,b,c\n1\n"), "short.csv", "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	require.Len(t, table.Rows[0], 3)
	assert.Equal(t, model.CellEmpty, table.Rows[0][2].Kind)
}

func TestParseCSV_ShiftJIS(t *testing.T) {
	src := "MFG Code,Discounted Price\nテスト12345,$10\n"
	encoded, err := japanese.ShiftJIS.NewEncoder().String(src)
	require.NoError(t, err)

	table, err := parsers.ParseCSV(strings.NewReader(encoded), "comp.csv", "shift_jis")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "テスト12345", table.Rows[0][0].Value)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := parsers.ParseCSV(strings.NewReader(""), "empty.csv", "utf-8")
	assert.True(t, errors.Is(err, parsers.ErrEmptyFile))
}

func TestParseCSV_UnknownEncoding(t *testing.T) {
	_, err := parsers.ParseCSV(strings.NewReader("a\n"), "a.csv", "ebcdic")
	assert.Error(t, err)
	assert.False(t, parsers.SupportedEncoding("ebcdic"))
	assert.True(t, parsers.SupportedEncoding("Shift_JIS"))
}

func TestParseXLSX_CellKinds(t *testing.T) {
	f := excelize.NewFile()
	header := []interface{}{"mfg_id", "price", "qty"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"A1", "$100", 3}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	require.NoError(t, f.SetCellFloat("Sheet1", "B3", 42.5, 1, 64))
	require.NoError(t, f.SetCellStr("Sheet1", "A3", "B2"))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	table, err := parsers.ParseSpreadsheet(&buf, "rd.xlsx", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "rd.xlsx", table.Name)
	assert.Equal(t, []string{"mfg_id", "price", "qty"}, table.Columns)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, model.Cell{Value: "A1", Kind: model.CellText}, table.Rows[0][0])
	assert.Equal(t, model.Cell{Value: "$100", Kind: model.CellText}, table.Rows[0][1])
	assert.Equal(t, model.CellNumber, table.Rows[0][2].Kind)
	assert.Equal(t, "3", table.Rows[0][2].Value)

	assert.Equal(t, model.CellNumber, table.Rows[1][1].Kind)
	assert.Equal(t, model.CellEmpty, table.Rows[1][2].Kind)
}

func TestParseSpreadsheet_UnsupportedType(t *testing.T) {
	_, err := parsers.ParseSpreadsheet(strings.NewReader("x"), "prices.pdf", "utf-8")
	assert.Error(t, err)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := parsers.ParseXLSX(strings.NewReader("not a zip"), "broken.xlsx")
	assert.Error(t, err)
}
