package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/reliefdata/sitewatch/internal/pkg/httputil"
)

// SetupRoutes configures the router.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// The proxy endpoints are contractually JSON even for 405s.
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httputil.MethodNotAllowed(w)
	})

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/records", h.GetRecords)
		r.Get("/map", h.GetMap)

		r.Route("/export", func(r chi.Router) {
			r.Get("/qc.csv", h.ExportCSV("qc"))
			r.Get("/filtered.csv", h.ExportCSV("filtered"))
			r.Get("/all.csv", h.ExportCSV("all"))
		})

		r.Route("/source", func(r chi.Router) {
			r.Get("/meta", h.GetSourceMeta)
			r.Get("/file", h.GetSourceFile)
		})

		r.Get("/overlay", h.GetOverlay)
		r.Post("/upload", h.PostUpload)
		r.Post("/reload", h.PostReload)
	})

	return r
}
