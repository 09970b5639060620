package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"genstudio/internal/http/handlers"
	"genstudio/internal/infra"
	"genstudio/internal/middleware"
)

// Config carries the router's cross-cutting settings.
type Config struct {
	JWTSecret       string
	CORSOrigins     []string
	RateLimitPerMin int
	Locales         *middleware.Locales
	CountryLookup   middleware.CountryLookup
	// StaticDir, when set, is served under /static for the filesystem store.
	StaticDir string
}

func NewRouter(app *handlers.App, cfg Config, logger infra.Logger) http.Handler {
	if cfg.Locales == nil {
		cfg.Locales = middleware.NewLocales("en", "en")
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
		middleware.I18N(cfg.Locales, cfg.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	if cfg.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/models", app.ListModels)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(cfg.JWTSecret))
			r.Get("/videos/{jobID}", app.VideoStatus)
			r.Get("/generations", app.ListGenerations)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
				r.Post("/generate-image", app.GenerateImage)
				r.Post("/generate-video", app.GenerateVideo)
				r.Post("/enhance-prompt", app.EnhancePrompt)
			})
		})
	})

	return r
}
