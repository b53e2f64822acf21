package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"coursemedia/internal/http/handlers"
	"coursemedia/internal/middleware"
)

// Options configures the cross-cutting middleware around the handlers.
type Options struct {
	JWTSecret       string
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	MaxUploadBytes  int64
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.CORS(opts.AllowedOrigins),
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(app.Logger),
		chimw.Recoverer,
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	auth := middleware.AuthJWT(opts.JWTSecret)
	admin := middleware.RequireRole(middleware.RoleAdmin)

	r.Route("/ingest", func(r chi.Router) {
		r.Use(auth)
		r.With(
			middleware.RateLimit(opts.RateLimitPerMin, time.Minute),
			maxBody(opts.MaxUploadBytes),
		).Post("/session", app.IngestSession)
		r.Get("/status", app.IngestStatus)
	})

	r.Route("/entities", func(r chi.Router) {
		r.Get("/", app.ListCourses)
		r.Get("/{id}", app.GetCourse)
		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", app.CreateCourse)
			r.Put("/{id}", app.UpdateCourse)
			r.Delete("/{id}", app.DeleteCourse)
		})
	})

	return r
}

func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
