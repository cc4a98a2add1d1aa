package history

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"pricecmp/config"
	"pricecmp/database"

	"github.com/jmoiron/sqlx"
)

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ListRunsHandler は最近の比較履歴を返します
func ListRunsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		runs, err := database.GetRecentRuns(db, config.GetConfig().HistoryLimit)
		if err != nil {
			log.Printf("Error getting comparison runs: %v", err)
			writeJSONError(w, "Failed to get comparison history", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(runs)
	}
}

// GetRunHandler は比較履歴1件を上位品目付きで返します (例: /api/history/{id})
func GetRunHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		runID := strings.TrimPrefix(r.URL.Path, "/api/history/")
		if runID == "" || strings.Contains(runID, "/") {
			writeJSONError(w, "run id is required", http.StatusBadRequest)
			return
		}
		detail, err := database.GetRunDetail(db, runID)
		if err != nil {
			if errors.Is(err, database.ErrRunNotFound) {
				writeJSONError(w, "comparison run not found", http.StatusNotFound)
				return
			}
			log.Printf("Error getting comparison run %s: %v", runID, err)
			writeJSONError(w, "Failed to get comparison run", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detail)
	}
}

// DeleteRunHandler は比較履歴を削除します (例: /api/history/delete/{id})
func DeleteRunHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			writeJSONError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		runID := strings.TrimPrefix(r.URL.Path, "/api/history/delete/")
		if runID == "" {
			writeJSONError(w, "run id is required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			writeJSONError(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.DeleteRunInTx(tx, runID); err != nil {
			if errors.Is(err, database.ErrRunNotFound) {
				writeJSONError(w, "comparison run not found", http.StatusNotFound)
				return
			}
			log.Printf("Error deleting comparison run %s: %v", runID, err)
			writeJSONError(w, "Failed to delete comparison run", http.StatusInternalServerError)
			return
		}
		if err := tx.Commit(); err != nil {
			writeJSONError(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "deleted"})
	}
}
