package main

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"pricecmp/config"
	"pricecmp/model"
	"pricecmp/pricing"
	"pricecmp/render"

	"github.com/jmoiron/sqlx"
)

// dashboardPage は index.html に渡す画面データです。
type dashboardPage struct {
	Info  string
	Error string

	InternalLabel   string
	CompetitorLabel string

	HasPreview        bool
	InternalFile      string
	CompetitorFile    string
	InternalPreview   template.HTML
	CompetitorPreview template.HTML

	Result        *model.ComparisonResult
	TopN          int
	Chart         template.HTML
	Table         template.HTML
	ExportEnabled bool
}

func newDashboardPage(cfg config.Config) dashboardPage {
	return dashboardPage{
		InternalLabel:   cfg.Labels.Internal,
		CompetitorLabel: cfg.Labels.Competitor,
		TopN:            cfg.TopN,
	}
}

func writeDashboard(w http.ResponseWriter, tmpl *template.Template, page dashboardPage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		log.Printf("Error executing main template: %v", err)
	}
}

// DashboardHandler はアップロードフォームだけの初期画面を表示します。
func DashboardHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		page := newDashboardPage(config.GetConfig())
		page.Info = pricing.MissingUploadMessage
		writeDashboard(w, tmpl, page, http.StatusOK)
	}
}

// CompareDashboardHandler はアップロードされた2つの価格表を比較し、グラフとテーブルを表示します。
func CompareDashboardHandler(db *sqlx.DB, tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		cfg := config.GetConfig()
		page := newDashboardPage(cfg)
		labels := render.ChartLabels{Internal: cfg.Labels.Internal, Competitor: cfg.Labels.Competitor}

		internal, competitor, err := pricing.ReadUploads(w, r, cfg.CSVEncoding)
		if err != nil {
			if errors.Is(err, pricing.ErrMissingUpload) {
				page.Info = pricing.MissingUploadMessage
				writeDashboard(w, tmpl, page, http.StatusOK)
				return
			}
			log.Printf("Error reading uploads: %v", err)
			page.Error = err.Error()
			writeDashboard(w, tmpl, page, pricing.StatusForError(err))
			return
		}

		internalHead := internal.Head(cfg.PreviewRows)
		competitorHead := competitor.Head(cfg.PreviewRows)
		page.HasPreview = true
		page.InternalFile = internal.Name
		page.CompetitorFile = competitor.Name
		page.InternalPreview = template.HTML(render.RenderPreviewTableHTML(internalHead))
		page.CompetitorPreview = template.HTML(render.RenderPreviewTableHTML(competitorHead))

		result, err := pricing.RunComparison(db, internal, competitor)
		if err != nil {
			log.Printf("Comparison of %s and %s stopped: %v", internal.Name, competitor.Name, err)
			page.Error = err.Error()
			writeDashboard(w, tmpl, page, pricing.StatusForError(err))
			return
		}

		page.Result = result
		page.Chart = template.HTML(render.RenderBarChartSVG(result.TopItems, labels))
		page.Table = template.HTML(render.RenderComparisonTableHTML(result.TopItems, result.IdentifierColumn, labels))
		page.ExportEnabled = result.RunID != ""
		writeDashboard(w, tmpl, page, http.StatusOK)
	}
}
