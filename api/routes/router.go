package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadflowhq/leadflow-backend/api/controllers"
	"github.com/leadflowhq/leadflow-backend/api/middleware"
	"github.com/leadflowhq/leadflow-backend/internal/leads"
	"github.com/leadflowhq/leadflow-backend/internal/ratelimit"
	"github.com/leadflowhq/leadflow-backend/pkg/config"
	"github.com/leadflowhq/leadflow-backend/pkg/db"
	"github.com/leadflowhq/leadflow-backend/pkg/logger"
	"github.com/leadflowhq/leadflow-backend/pkg/metrics"
	"github.com/leadflowhq/leadflow-backend/pkg/redis"
)

const (
	rateClassCreate = "create"
	rateClassUpdate = "update"
	rateClassImport = "import"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	limiter *ratelimit.Limiter,
	leadsService leads.Service,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/buyers", func(r chi.Router) {
		r.Use(middleware.DemoUser(cfg.Demo, logg))

		r.With(middleware.RateLimit(limiter, rateClassCreate, logg)).
			Post("/", controllers.BuyerCreate(leadsService, logg))
		r.Get("/", controllers.BuyerList(leadsService, logg))
		r.Get("/export", controllers.BuyerExport(leadsService, logg))

		r.With(middleware.RateLimit(limiter, rateClassImport, logg)).
			Post("/import", controllers.BuyerImport(leadsService, cfg.Import.MaxRows, logg))
		r.Post("/import/validate", controllers.BuyerImportValidate(cfg.Import.MaxRows, logg))

		r.Route("/{buyerId}", func(r chi.Router) {
			r.Get("/", controllers.BuyerDetail(leadsService, logg))
			r.With(middleware.RateLimit(limiter, rateClassUpdate, logg)).
				Put("/", controllers.BuyerUpdate(leadsService, logg))
			r.Delete("/", controllers.BuyerDelete(leadsService, logg))
		})
	})

	return r
}

// Policies translates the configured limits into the limiter's rate classes.
func Policies(cfg config.RateLimitConfig) map[string]ratelimit.Policy {
	return map[string]ratelimit.Policy{
		rateClassCreate: {Window: cfg.Window, Max: cfg.CreateLimit},
		rateClassUpdate: {Window: cfg.Window, Max: cfg.UpdateLimit},
		rateClassImport: {Window: cfg.Window, Max: cfg.ImportLimit},
	}
}
