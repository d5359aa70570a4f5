package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danverhoeven/adledger-backend/api/controllers"
	"github.com/danverhoeven/adledger-backend/api/middleware"
	"github.com/danverhoeven/adledger-backend/internal/auth"
	"github.com/danverhoeven/adledger-backend/internal/entries"
	"github.com/danverhoeven/adledger-backend/internal/networks"
	"github.com/danverhoeven/adledger-backend/internal/reports"
	"github.com/danverhoeven/adledger-backend/internal/settings"
	"github.com/danverhoeven/adledger-backend/pkg/auth/session"
	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/db"
	"github.com/danverhoeven/adledger-backend/pkg/logger"
	"github.com/danverhoeven/adledger-backend/pkg/metrics"
	"github.com/danverhoeven/adledger-backend/pkg/redis"
)

// Deps collects everything the HTTP surface needs wired in.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Entries  entries.Service
	Reports  reports.Service
	Networks networks.Service
	Settings settings.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", controllers.EntryList(deps.Entries, logg))
			r.Post("/", controllers.EntryCreate(deps.Entries, logg))
			r.Get("/{entryId}", controllers.EntryDetail(deps.Entries, logg))
			r.Patch("/{entryId}", controllers.EntryUpdate(deps.Entries, logg))
			r.Post("/{entryId}/archive", controllers.EntryArchive(deps.Entries, logg))
			r.Delete("/{entryId}", controllers.EntryDelete(deps.Entries, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ReportSummary(deps.Reports, logg))
			r.Get("/chart", controllers.ReportChart(deps.Reports, logg))
			r.Get("/export", controllers.ReportExport(deps.Reports, logg))
		})

		r.Route("/networks", func(r chi.Router) {
			r.Get("/", controllers.NetworkList(deps.Networks, logg))
			r.Post("/api-key", controllers.NetworkConnectAPIKey(deps.Networks, logg))
			r.Post("/oauth/begin", controllers.NetworkBeginOAuth(deps.Networks, logg))
			r.Post("/oauth/complete", controllers.NetworkCompleteOAuth(deps.Networks, logg))
			r.Post("/{connectionId}/check", controllers.NetworkCheck(deps.Networks, logg))
			r.Post("/{connectionId}/disable", controllers.NetworkDisable(deps.Networks, logg))
			r.Delete("/{connectionId}", controllers.NetworkDelete(deps.Networks, logg))
		})

		r.Route("/settings/preferences", func(r chi.Router) {
			r.Get("/", controllers.PreferencesGet(deps.Settings, logg))
			r.Put("/", controllers.PreferencesUpdate(deps.Settings, logg))
			r.Patch("/", controllers.PreferencesAutosave(deps.Settings, logg))
		})
	})

	return r
}
