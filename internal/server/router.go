package server

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/harusame/merchandise-manager/internal/clock"
	"github.com/harusame/merchandise-manager/internal/config"
	"github.com/harusame/merchandise-manager/internal/handlers"
	"github.com/harusame/merchandise-manager/internal/httpx"
	"github.com/harusame/merchandise-manager/internal/middleware"
	"github.com/harusame/merchandise-manager/internal/rank"
	"github.com/harusame/merchandise-manager/internal/services"
	"github.com/harusame/merchandise-manager/internal/upload"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	clk := clock.NewRealClock()
	ranks := rank.Default()
	items := services.NewItemService(db, clk)
	customers := services.NewCustomerService(db, ranks)
	uploads := upload.NewStore(cfg.UploadDir, clk)

	ih := handlers.NewItemHandler(items, customers, uploads, clk)
	ch := handlers.NewCustomerHandler(customers, ranks)
	api := handlers.NewAPIHandler(items, customers)

	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – ignore detailed errors in body
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Item pages
	mux.HandleFunc("GET /{$}", ih.Index)
	mux.HandleFunc("GET /add", ih.AddForm)
	mux.HandleFunc("POST /add", ih.Add)
	mux.HandleFunc("GET /edit/{id}", ih.EditForm)
	mux.HandleFunc("POST /edit/{id}", ih.Edit)
	mux.HandleFunc("POST /delete/{id}", ih.Delete)
	mux.HandleFunc("GET /view/{id}", ih.View)
	mux.HandleFunc("GET /export", ih.Export)

	// Customer pages
	mux.HandleFunc("GET /customers", ch.List)
	mux.HandleFunc("GET /customers/add", ch.AddForm)
	mux.HandleFunc("POST /customers/add", ch.Add)
	mux.HandleFunc("GET /customers/edit/{id}", ch.EditForm)
	mux.HandleFunc("POST /customers/edit/{id}", ch.Edit)
	mux.HandleFunc("GET /customers/view/{id}", ch.View)
	mux.HandleFunc("POST /customers/delete/{id}", ch.Delete)

	// Read-only JSON API
	mux.HandleFunc("GET /api/stats", api.Stats)
	mux.HandleFunc("GET /api/customers", api.CustomerRefs)

	// Static assets (CSS plus uploaded photos)
	mux.Handle("GET /static/", staticHandler())

	return middleware.Prefs(withRecover(withLogging(mux)))
}

// staticHandler serves /static/ with an ETag and cache headers; DEV=1
// disables caching.
func staticHandler() http.Handler {
	fs := http.FileServer(http.Dir("static"))
	return http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		ext := filepath.Ext(name)
		// open file manually to compute ETag
		f, err := os.Open(filepath.Join("static", name))
		if err == nil {
			h := sha1.New()
			// small files only; large could be optimized with stat modtime
			if _, cerr := io.Copy(h, f); cerr == nil {
				etag := fmt.Sprintf("\"%x\"", h.Sum(nil)[:8])
				w.Header().Set("ETag", etag)
				if match := r.Header.Get("If-None-Match"); match == etag {
					f.Close()
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
			f.Close()
		}
		if ext == ".css" {
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		} else if ext == ".js" {
			w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		}
		if os.Getenv("DEV") != "1" {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}
		fs.ServeHTTP(w, r)
	}))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
