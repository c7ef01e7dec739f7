package handler

import (
	"net/http"

	"github.com/rockstar-cards/cashback-bfa-go/internal/i18n"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/client"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the cashback rewards screen.
func NewRouter(
	txnSvc *service.TransactionsService,
	dataClient *client.DataClient,
	sessions *service.SessionManager,
	translator *i18n.Translator,
	metrics *observability.Metrics,
	logger *zap.Logger,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Cashback data bundle
		// GET /v1/cashback/data
		// =============================================
		r.Get("/cashback/data", getCashbackDataHandler(dataClient, logger))
		r.Get("/cashback/promotions", getPromotionsHandler(dataClient, logger))
		r.Get("/cashback/rewards", getRockStarRewardsHandler(dataClient, logger))

		// =============================================
		// 2. Transactions
		// GET /v1/cashback/transactions?period=&category=&page=
		// GET /v1/cashback/summary?period=&category=
		// =============================================
		r.Get("/cashback/transactions", getTransactionsHandler(txnSvc, logger))
		r.Get("/cashback/summary", getSummaryHandler(txnSvc, logger))

		// =============================================
		// 3. Periods & translations
		// =============================================
		r.Get("/cashback/periods", getPeriodsHandler())
		r.Get("/translations", getTranslationsHandler(translator, logger))

		// =============================================
		// 4. Screen sessions
		// =============================================
		r.Route("/cashback/sessions", func(r chi.Router) {
			r.Post("/", createSessionHandler(sessions, logger))
			r.Get("/{sessionId}/state", getSessionStateHandler(sessions, logger))
			r.Put("/{sessionId}/filters", applySessionFiltersHandler(sessions, logger))
			r.Post("/{sessionId}/transactions/more", loadMoreSessionHandler(sessions, logger))
			r.Put("/{sessionId}/product", selectSessionProductHandler(sessions, logger))
			r.Delete("/{sessionId}", deleteSessionHandler(sessions, logger))
		})

		// =============================================
		// 5. Service metrics
		// GET /v1/metrics/cashback
		// =============================================
		r.Get("/metrics/cashback", cashbackMetricsHandler(metrics, logger))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
