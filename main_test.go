package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricecmp/config"
	"pricecmp/loader"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := loader.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	handler, err := newServer(db)
	require.NoError(t, err)
	return handler
}

func postFiles(t *testing.T, files map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/compare", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDashboard_PromptsForUploads(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Price Comparison Dashboard")
	assert.Contains(t, body, "Please upload both files to proceed.")
	assert.NotContains(t, body, "<svg")
}

func TestDashboard_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompareDashboard_RendersChartAndTable(t *testing.T) {
	req := postFiles(t, map[string][2]string{
		"internal_file":   {"rd.csv", "mfg_id,price\nA1,$100\nB2,$5\n"},
		"competitor_file": {"comp.csv", "MFG Code,Discounted Price\nMFG#:A1#ABA,$90\n"},
	})
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Your Data Sample")
	assert.Contains(t, body, "Competitor Data Sample")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Top 20 Manufacturing IDs by Price Difference")
	assert.Contains(t, body, "+$10.00")
	assert.Contains(t, body, "format=xlsx")
}

func TestCompareDashboard_NoExportLinksWhenRunNotSaved(t *testing.T) {
	db, err := loader.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec("DROP TABLE comparison_items; DROP TABLE comparison_runs;")
	require.NoError(t, err)

	handler, err := newServer(db)
	require.NoError(t, err)

	req := postFiles(t, map[string][2]string{
		"internal_file":   {"rd.csv", "mfg_id,price\nA1,$100\n"},
		"competitor_file": {"comp.csv", "MFG Code,Discounted Price\nA1,$90\n"},
	})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "+$10.00")
	assert.NotContains(t, body, "format=csv")
	assert.NotContains(t, body, "format=xlsx")
}

func TestCompareDashboard_MissingColumnStops(t *testing.T) {
	req := postFiles(t, map[string][2]string{
		"internal_file":   {"rd.csv", "sku,price\nA1,$100\n"},
		"competitor_file": {"comp.csv", "MFG Code,Discounted Price\nA1,$90\n"},
	})
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Could not find mfg_id or mfr_part column in your file.")
	assert.Contains(t, body, "Your Data Sample")
	assert.NotContains(t, body, "<svg")
	assert.NotContains(t, body, "Top 20")
}

func TestCompareDashboard_OneFileOnly(t *testing.T) {
	req := postFiles(t, map[string][2]string{
		"internal_file": {"rd.csv", "mfg_id,price\nA1,$100\n"},
	})
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please upload both files to proceed.")
	assert.NotContains(t, body, "Your Data Sample")
}

func TestCompareDashboard_NoMatches(t *testing.T) {
	req := postFiles(t, map[string][2]string{
		"internal_file":   {"rd.csv", "mfg_id,price\nA1,$100\n"},
		"competitor_file": {"comp.csv", "MFG Code,Discounted Price\nB2,$90\n"},
	})
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<svg")
	assert.Contains(t, body, "No identifiers matched between the two files.")
}

func TestGetConfigHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got config.Config
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, config.GetConfig(), got)
}

func TestSaveConfigHandler_RejectsInvalid(t *testing.T) {
	for _, payload := range []string{
		`{"topN": -1}`,
		`{"csvEncoding": "ebcdic"}`,
		`{"columns": {"internalPrice": "   "}}`,
		`not json`,
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(payload))
		testServer(t).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
	}
}

func TestSaveConfigHandler_Saves(t *testing.T) {
	oldPath := config.ConfigFilePath
	config.ConfigFilePath = filepath.Join(t.TempDir(), "pricecmp_config.toml")
	before := config.GetConfig()
	t.Cleanup(func() {
		require.NoError(t, config.SaveConfig(before))
		config.ConfigFilePath = oldPath
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(`{"topN": 5}`))
	testServer(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, config.GetConfig().TopN)
	assert.Equal(t, before.Columns, config.GetConfig().Columns)
}
