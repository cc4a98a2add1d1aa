package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"pricecmp/model"
)

// ErrEmptyFile はヘッダー行すらないファイルを表します。
var ErrEmptyFile = errors.New("file is empty")

// ParseSpreadsheet はファイル名の拡張子に応じて .xlsx または .csv を解析します。
func ParseSpreadsheet(r io.Reader, fileName, csvEncoding string) (model.Table, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return ParseXLSX(r, fileName)
	case ".csv", ".txt":
		return ParseCSV(r, fileName, csvEncoding)
	default:
		return model.Table{}, fmt.Errorf("unsupported file type: %s", fileName)
	}
}

// ParseXLSX はワークブックの先頭シートを読み込みます。1行目をヘッダーとして扱います。
func ParseXLSX(r io.Reader, name string) (model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to open excel %s: %w", name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.Table{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, name, err)
	}
	if len(rows) == 0 {
		return model.Table{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}

	table := model.Table{
		Name:    name,
		Columns: normalizeHeader(rows[0]),
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		cells := make([]model.Cell, len(table.Columns))
		for col := range table.Columns {
			if col >= len(row) || row[col] == "" {
				cells[col] = model.Cell{Kind: model.CellEmpty}
				continue
			}
			axis, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return model.Table{}, err
			}
			cellType, err := f.GetCellType(sheet, axis)
			if err != nil {
				log.Printf("WARN: %s %s のセル種別を取得できません: %v", name, axis, err)
				cellType = excelize.CellTypeUnset
			}
			cells[col] = model.Cell{Value: row[col], Kind: kindOf(cellType, row[col])}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

// kindOf は excelize のセル種別を model.CellKind に変換します。
// 型属性のない値は数値セルです。数式は結果が数値でなければテキストとして扱います。
func kindOf(t excelize.CellType, value string) model.CellKind {
	switch t {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return model.CellText
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate:
		return model.CellNumber
	case excelize.CellTypeFormula:
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return model.CellNumber
		}
		return model.CellText
	default:
		return model.CellOther
	}
}

// ParseCSV はCSVを読み込みます。空でないセルは全てテキストです。
func ParseCSV(r io.Reader, name, encodingName string) (model.Table, error) {
	decoded, err := decodeReader(r, encodingName)
	if err != nil {
		return model.Table{}, err
	}
	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return model.Table{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("CSVヘッダーの読み取りに失敗 (%s): %w", name, err)
	}

	table := model.Table{
		Name:    name,
		Columns: normalizeHeader(header),
	}

	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: %s %d行目の読み取りエラー (スキップ): %v", name, line, err)
			continue
		}
		cells := make([]model.Cell, len(table.Columns))
		for col := range table.Columns {
			if col < len(rec) {
				cells[col] = model.TextCell(rec[col])
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}
