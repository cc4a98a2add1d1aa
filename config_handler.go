package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"pricecmp/config"
	"pricecmp/parsers"
)

// ヘルパー関数: エラーをJSONで返す
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// GetConfigHandler は現在の設定を返します
func GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg := config.GetConfig()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}
}

// SaveConfigHandler は設定を保存します
func SaveConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newCfg := config.GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
			writeJSONError(w, "Invalid request body.", http.StatusBadRequest)
			return
		}

		if err := validateConfig(newCfg); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := config.SaveConfig(newCfg); err != nil {
			log.Printf("Error saving config: %v", err)
			writeJSONError(w, "Failed to save settings.", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Settings saved."})
	}
}

// validateConfig は保存前に設定値を検証します。0 や空文字は既定値になるため許可します。
func validateConfig(c config.Config) error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	if c.TopN < 0 || c.TopN > 1000 {
		return errors.New("topN must be between 1 and 1000")
	}
	if c.PreviewRows < 0 {
		return errors.New("previewRows must not be negative")
	}
	if c.HistoryLimit < 0 {
		return errors.New("historyLimit must not be negative")
	}
	if !parsers.SupportedEncoding(c.CSVEncoding) {
		return errors.New("unsupported CSV encoding: " + c.CSVEncoding)
	}
	cols := []string{
		c.Columns.InternalPrice, c.Columns.InternalIdentifier, c.Columns.InternalPartNumber,
		c.Columns.CompetitorCode, c.Columns.CompetitorPrice,
	}
	for _, col := range cols {
		if col != "" && strings.TrimSpace(col) == "" {
			return errors.New("column names must not be blank")
		}
	}
	return nil
}
