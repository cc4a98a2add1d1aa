package main

import (
	"html/template"
	"net/http"

	"pricecmp/history"
	"pricecmp/pricing"

	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB, appTemplate *template.Template) {
	mux.HandleFunc("/", DashboardHandler(appTemplate))
	mux.HandleFunc("/compare", CompareDashboardHandler(dbConn, appTemplate))

	mux.HandleFunc("/api/pricing/compare", pricing.CompareHandler(dbConn))
	mux.HandleFunc("/api/pricing/export", pricing.ExportRunHandler(dbConn))

	mux.HandleFunc("/api/history", history.ListRunsHandler(dbConn))
	mux.HandleFunc("/api/history/", history.GetRunHandler(dbConn))
	mux.HandleFunc("/api/history/delete/", history.DeleteRunHandler(dbConn))

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			GetConfigHandler()(w, r)
		case http.MethodPost:
			SaveConfigHandler()(w, r)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	})
}
