package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/loanbridge/apply/internal/handler"
	"github.com/loanbridge/apply/internal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.NoStore)

	// Health check
	r.Get("/api/health", handler.Health(app.db))

	// Mail relay
	relayHandler := handler.NewRelayHandler(app.logger, app.mailer, app.config.SMTPUser)
	r.Post("/api/send", relayHandler.Send)

	// Application intake + dashboard
	applicationHandler := handler.NewApplicationHandler(
		app.logger,
		app.store,
		app.mailer,
		app.config.UploadDir,
		app.config.MaxUploadSizeMB,
		app.config.DestinationEmail,
		app.config.SMTPUser,
	)

	perMinute := rate.Limit(float64(app.config.RateLimitPerMinute) / 60.0)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(perMinute, app.config.RateLimitPerMinute))
		r.Post("/api/applications", applicationHandler.Submit)
		r.Post("/api/applications/{id}/documents", applicationHandler.UploadDocuments)
	})

	r.Get("/api/applications", applicationHandler.List)
	r.Get("/api/applications/{id}", applicationHandler.Get)

	// Stored uploads, served inline so PDFs preview in the dashboard
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.config.UploadDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	return r
}
