package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", HomeHandler)
	r.Get("/ping", PingHandler)

	r.Route("/reviews", func(r chi.Router) {
		r.Post("/", app.UploadReviewHandler)
		r.Get("/", app.RecentReviewsHandler)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.ReviewSummaryHandler)
			r.Get("/frames/{position}", app.FrameHandler)
			r.Post("/filter", app.SetFilterHandler)
			r.Post("/nav/{action}", app.NavigateHandler)
			r.Get("/stats", app.StatsHandler)
			r.Get("/export.csv", app.ExportHandler)
		})
	})

	r.Get("/screenshots/*", app.ScreenshotHandler)

	return r
}
