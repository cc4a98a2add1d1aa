package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"pricecmp/config"
	"pricecmp/database"
	"pricecmp/model"
	"pricecmp/parsers"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// アップロードフォームのフィールド名
const (
	InternalFileField   = "internal_file"
	CompetitorFileField = "competitor_file"
)

// MissingUploadMessage はファイルが揃っていないときに画面に表示する案内です。
const MissingUploadMessage = "Please upload both files to proceed."

// MaxUploadSize はアップロードリクエスト全体の上限バイト数です。
var MaxUploadSize int64 = 32 << 20

var (
	// ErrMissingUpload は2つのファイルのどちらかがアップロードされていないことを表します。
	ErrMissingUpload = errors.New("both files must be uploaded")
	// ErrBadUpload はマルチパートフォームとして読み込めなかったことを表します。
	ErrBadUpload = errors.New("file upload error")
)

// UserMessage はエラーを画面やAPIで表示する文言に変換します。
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingUpload) {
		return MissingUploadMessage
	}
	return err.Error()
}

// writeJsonError はエラーレスポンスを返します
func writeJsonError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// OptionsFromConfig は設定から比較オプションを作成します。
func OptionsFromConfig(c config.Config) Options {
	return Options{
		Columns: Columns{
			InternalPrice:      c.Columns.InternalPrice,
			InternalIdentifier: c.Columns.InternalIdentifier,
			InternalPartNumber: c.Columns.InternalPartNumber,
			CompetitorCode:     c.Columns.CompetitorCode,
			CompetitorPrice:    c.Columns.CompetitorPrice,
		},
		TopN: c.TopN,
	}
}

// ReadUploads はマルチパートフォームから2つの価格表を読み込みます。
// どちらかのファイルがない場合は ErrMissingUpload を返します。
func ReadUploads(w http.ResponseWriter, r *http.Request, csvEncoding string) (model.Table, model.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return model.Table{}, model.Table{}, ErrMissingUpload
		}
		return model.Table{}, model.Table{}, fmt.Errorf("%w: %w", ErrBadUpload, err)
	}

	internalHeader := firstFile(r.MultipartForm, InternalFileField)
	competitorHeader := firstFile(r.MultipartForm, CompetitorFileField)
	if internalHeader == nil || competitorHeader == nil {
		return model.Table{}, model.Table{}, ErrMissingUpload
	}

	internal, err := parseUpload(internalHeader, csvEncoding)
	if err != nil {
		return model.Table{}, model.Table{}, err
	}
	competitor, err := parseUpload(competitorHeader, csvEncoding)
	if err != nil {
		return model.Table{}, model.Table{}, err
	}
	return internal, competitor, nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	return files[0]
}

func parseUpload(fh *multipart.FileHeader, csvEncoding string) (model.Table, error) {
	file, err := fh.Open()
	if err != nil {
		return model.Table{}, fmt.Errorf("could not open uploaded file: %w", err)
	}
	defer file.Close()

	table, err := parsers.ParseSpreadsheet(file, fh.Filename, csvEncoding)
	if err != nil {
		return model.Table{}, &UploadError{File: fh.Filename, Err: err}
	}
	return table, nil
}

// UploadError はアップロードされたファイルを解析できなかったことを表します。
type UploadError struct {
	File string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("could not read file '%s': %v", e.File, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RunComparison は比較処理を実行し、履歴が有効であれば結果を保存します。
// RunID は履歴に保存できた場合だけ設定されます。保存に失敗しても比較結果は返します。
func RunComparison(db *sqlx.DB, internal, competitor model.Table) (*model.ComparisonResult, error) {
	cfg := config.GetConfig()

	result, err := Compare(internal, competitor, OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	log.Printf("Compared %s (%d rows) with %s (%d rows): %d matched",
		result.InternalFile, result.InternalRows, result.CompetitorFile, result.CompetitorRows,
		result.MatchedCount)

	if db != nil && cfg.HistoryEnabled {
		result.RunID = uuid.New().String()
		if err := saveHistory(db, result, cfg.HistoryLimit); err != nil {
			log.Printf("WARN: Failed to save comparison run %s: %v", result.RunID, err)
			result.RunID = ""
		} else {
			log.Printf("Saved comparison run %s", result.RunID)
		}
	}
	return result, nil
}

func saveHistory(db *sqlx.DB, result *model.ComparisonResult, keep int) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.SaveComparisonRunInTx(tx, result); err != nil {
		return err
	}
	if keep > 0 {
		pruned, err := database.PruneRunsInTx(tx, keep)
		if err != nil {
			return err
		}
		if pruned > 0 {
			log.Printf("Pruned %d old comparison runs", pruned)
		}
	}
	return tx.Commit()
}

// StatusForError は比較処理のエラーに対応するHTTPステータスを返します。
func StatusForError(err error) int {
	var colErr *MissingColumnError
	var upErr *UploadError
	var sizeErr *http.MaxBytesError
	switch {
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrMissingUpload), errors.Is(err, ErrBadUpload),
		errors.As(err, &colErr), errors.As(err, &upErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CompareHandler は2つの価格表を受け取り、比較結果をJSONで返します。
func CompareHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJsonError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		cfg := config.GetConfig()

		internal, competitor, err := ReadUploads(w, r, cfg.CSVEncoding)
		if err != nil {
			writeJsonError(w, UserMessage(err), StatusForError(err))
			return
		}

		result, err := RunComparison(db, internal, competitor)
		if err != nil {
			writeJsonError(w, err.Error(), StatusForError(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
