// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/shelf/service/internal/book"
	"github.com/shelf/service/internal/download"
	"github.com/shelf/service/internal/history"
	"github.com/shelf/service/internal/metrics"
	appMiddleware "github.com/shelf/service/internal/middleware"
	"github.com/shelf/service/internal/upload"
)

// Handlers groups the feature handlers mounted under /api. Metrics is
// optional; when set, requests are instrumented and /metrics is served.
type Handlers struct {
	Books    *book.Handler
	History  *history.Handler
	Upload   *upload.Handler
	Download *download.Handler
	Metrics  *metrics.Metrics
}

// NewRouter builds the chi router with the shared middleware stack.
func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/book", func(r chi.Router) {
			r.Post("/history", h.History.SaveHistory)
			r.Get("/{title}", h.Books.GetBook)
		})

		r.Route("/home", func(r chi.Router) {
			r.Get("/history", h.History.ListHistory)
			r.Get("/books", h.Books.ListBooks)
			r.Get("/search", h.Books.SearchList)
		})

		r.Route("/download", func(r chi.Router) {
			r.Get("/cover/{link}", h.Download.GetCover)
			r.Get("/book/{link}", h.Download.GetBook)
		})

		r.Post("/upload/book", h.Upload.UploadBook)
	})

	return r
}
