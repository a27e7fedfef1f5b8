// Package httpadapter exposes the document service over a JSON REST API.
package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/intradocs/intradocs/internal/core/domain"
	"github.com/intradocs/intradocs/internal/core/ports"
	"github.com/intradocs/intradocs/internal/observability/metrics"
)

// Options carries everything the router needs beyond the services themselves.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Login throttling, per client IP.
	LoginRateLimitRPS   float64
	LoginRateLimitBurst int

	// StaticFilesDir, when set, serves stored blobs under /files/ for the
	// local storage backend. Object-store backends presign instead.
	StaticFilesDir string
}

type Router struct {
	docs    ports.DocumentService
	hier    ports.HierarchyService
	auth    ports.AuthService
	news    ports.NewsService
	reports ports.ReportService

	log      *slog.Logger
	metrics  *metrics.Metrics
	limiter  *loginLimiter
	filesDir string
}

func NewRouter(
	docs ports.DocumentService,
	hier ports.HierarchyService,
	auth ports.AuthService,
	news ports.NewsService,
	reports ports.ReportService,
	opts Options,
) *Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		docs:     docs,
		hier:     hier,
		auth:     auth,
		news:     news,
		reports:  reports,
		log:      log,
		metrics:  opts.Metrics,
		limiter:  newLoginLimiter(opts.LoginRateLimitRPS, opts.LoginRateLimitBurst),
		filesDir: opts.StaticFilesDir,
	}
}

// Handler builds the full route tree. Read endpoints for the intranet UI and
// all mutations sit behind authentication; administration additionally
// requires the content-management permission.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware(rt.log))
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Get("/healthz", rt.handleHealth)

	if rt.filesDir != "" {
		files := http.StripPrefix("/files/", http.FileServer(http.Dir(rt.filesDir)))
		r.Method(http.MethodGet, "/files/*", files)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.limiter.middleware)
			r.Post("/auth/login", rt.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware)

			// Reads serve every authenticated intranet user; every
			// mutation needs the content-management permission.
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", rt.handleListDocuments)
				r.Get("/{id}", rt.handleGetDocument)
				r.Get("/{id}/download", rt.handleDownloadDocument)

				r.Group(func(r chi.Router) {
					r.Use(requirePermission(domain.PermManageContent))
					r.Post("/", rt.handleCreateDocument)
					r.Put("/{id}", rt.handleUpdateDocument)
					r.Delete("/{id}", rt.handleDeleteDocument)
				})
			})

			r.Route("/hierarchy", func(r chi.Router) {
				r.Get("/types", rt.handleListTypes)
				r.Get("/types/{typeID}/generals", rt.handleListGenerals)
				r.Get("/generals/{generalID}/internals", rt.handleListInternals)

				r.Group(func(r chi.Router) {
					r.Use(requirePermission(domain.PermManageContent))

					r.Post("/types", rt.handleCreateType)
					r.Put("/types/{id}", rt.handleUpdateType)
					r.Delete("/types/{id}", rt.handleDeleteType)

					r.Post("/generals", rt.handleCreateGeneral)
					r.Put("/generals/{id}", rt.handleUpdateGeneral)
					r.Delete("/generals/{id}", rt.handleDeleteGeneral)

					r.Post("/internals", rt.handleCreateInternal)
					r.Put("/internals/{id}", rt.handleUpdateInternal)
					r.Delete("/internals/{id}", rt.handleDeleteInternal)
				})
			})

			r.Route("/news", func(r chi.Router) {
				r.Get("/", rt.handleListNews)

				r.Group(func(r chi.Router) {
					r.Use(requirePermission(domain.PermManageContent))
					r.Post("/", rt.handleCreateNews)
					r.Put("/{id}", rt.handleUpdateNews)
					r.Delete("/{id}", rt.handleDeleteNews)
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(requirePermission(domain.PermManageContent))
					r.Get("/stats/generals", rt.handleGeneralStats)
					r.Get("/reports/documents.xlsx", rt.handleDocumentsReport)
				})

				r.Group(func(r chi.Router) {
					r.Use(requirePermission(domain.PermManageUsers))
					r.Get("/users", rt.handleListUsers)
					r.Put("/users/{id}/active", rt.handleSetUserActive)
				})
			})
		})
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
