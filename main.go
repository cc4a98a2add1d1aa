package main

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/jmoiron/sqlx"

	"pricecmp/config"
	"pricecmp/loader"
)

//go:embed static
var staticFiles embed.FS

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("WARN: Failed to load config file: %v. Using defaults.", err)
		cfg = config.GetConfig()
	}

	log.Println("Connecting to database...")
	dbConn, err := loader.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer dbConn.Close()
	log.Println("Database initialization complete.")

	handler, err := newServer(dbConn)
	if err != nil {
		log.Fatalf("Failed to set up server: %v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	log.Printf("Starting server on %s", url)

	if cfg.OpenBrowser {
		openBrowser(url)
	}

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server start error: %v", err)
	}
}

// newServer はテンプレートを読み込み、ルーティングを設定したハンドラーを返します。
func newServer(dbConn *sqlx.DB) (http.Handler, error) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to sub static directory: %w", err)
	}

	appTemplate, err := template.ParseFS(staticFS, "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index.html: %w", err)
	}
	log.Println("HTML templates loaded and parsed.")

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	SetupRoutes(mux, dbConn, appTemplate)
	return mux, nil
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = exec.Command("xdg-open", url).Start()
	}
	if err != nil {
		log.Printf("failed to open browser: %v", err)
	}
}
