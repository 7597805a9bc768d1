package router

import (
	"net/http"

	"pet-adoption-catalog/internal/app"
	_ "pet-adoption-catalog/internal/docs"
	"pet-adoption-catalog/internal/domain/events"
	"pet-adoption-catalog/internal/domain/moodrefresh"
	"pet-adoption-catalog/internal/domain/pets"
	"pet-adoption-catalog/internal/domain/references"
	"pet-adoption-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// maxBodyBytes limita los payloads JSON (10 KiB).
const maxBodyBytes = 10 << 10

// NewRouter monta las rutas sobre un App ya cableado.
func NewRouter(a *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(a.Log))
	r.Use(middleware.AccessLog(a.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         600,
	}))
	r.Use(a.Metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", a.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.RequestSize(maxBodyBytes))

		// Rutas por módulo
		references.RegisterRoutes(r, a.References)
		pets.RegisterRoutes(r, a.Pets)
		events.RegisterRoutes(r, a.Events, a.Pets)

		// Utilidades de admin sólo fuera de producción
		if !a.Config.IsProduction() {
			pets.RegisterAdminRoutes(r, a.Pets)
			moodrefresh.RegisterAdminRoutes(r, a.Scheduler)
		}
	})

	return r
}
