package pricing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pricecmp/config"
	"pricecmp/database"
	"pricecmp/model"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{"rank", "identifier", "price_internal", "price_competitor", "price_diff"}

// ExportRunHandler は保存された比較結果の上位品目を CSV または XLSX でダウンロードさせます。
func ExportRunHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		if runID == "" {
			writeJsonError(w, "run is required", http.StatusBadRequest)
			return
		}
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "xlsx" {
			writeJsonError(w, "format must be csv or xlsx", http.StatusBadRequest)
			return
		}

		detail, err := database.GetRunDetail(db, runID)
		if err != nil {
			if errors.Is(err, database.ErrRunNotFound) {
				writeJsonError(w, "comparison run not found", http.StatusNotFound)
				return
			}
			log.Printf("Error getting comparison run %s for export: %v", runID, err)
			writeJsonError(w, "Failed to get comparison run", http.StatusInternalServerError)
			return
		}

		fileName := url.PathEscape(exportFileName(detail.ComparisonRun, format))
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+fileName)

		labels := config.GetConfig().Labels
		switch format {
		case "xlsx":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			if err := WriteItemsXLSX(w, detail.Items, labels.Internal, labels.Competitor); err != nil {
				log.Printf("Failed to write XLSX for run %s: %v", runID, err)
			}
		default:
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Write([]byte{0xEF, 0xBB, 0xBF})
			if err := WriteItemsCSV(w, detail.Items); err != nil {
				log.Printf("Failed to write CSV for run %s: %v", runID, err)
			}
		}
	}
}

func exportFileName(run model.ComparisonRun, ext string) string {
	t, err := database.ParseCreatedAt(run.CreatedAt)
	if err != nil {
		t = time.Now()
	}
	return fmt.Sprintf("price_comparison_%s.%s", t.Format("20060102_150405"), ext)
}

func itemRecord(it model.RunItem) []string {
	return []string{
		strconv.Itoa(it.Rank),
		it.Identifier,
		strconv.FormatFloat(it.PriceInternal, 'f', 2, 64),
		strconv.FormatFloat(it.PriceCompetitor, 'f', 2, 64),
		strconv.FormatFloat(it.PriceDiff, 'f', 2, 64),
	}
}

// WriteItemsCSV は品目をCSVで書き出します。
func WriteItemsCSV(w io.Writer, items []model.RunItem) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, it := range items {
		if err := csvWriter.Write(itemRecord(it)); err != nil {
			return fmt.Errorf("failed to write CSV row (rank %d): %w", it.Rank, err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteItemsXLSX は品目を1シートのワークブックとして書き出します。
func WriteItemsXLSX(w io.Writer, items []model.RunItem, internalLabel, competitorLabel string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Top Items"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := []interface{}{"rank", "identifier", internalLabel, competitorLabel, "price_diff"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	numFmt := "#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return err
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{it.Rank, it.Identifier, it.PriceInternal, it.PriceCompetitor, it.PriceDiff}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(items) > 0 {
		last, _ := excelize.CoordinatesToCellName(5, len(items)+1)
		if err := f.SetCellStyle(sheet, "C2", last, style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
