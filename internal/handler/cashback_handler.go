package handler

import (
	"net/http"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/i18n"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/client"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/period"
	"github.com/rockstar-cards/cashback-bfa-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Cashback data bundle — GET /v1/cashback/data
// ============================================================

func getCashbackDataHandler(dataClient *client.DataClient, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cashback/data")
		defer span.End()

		data, err := dataClient.GetCashbackData(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func getPromotionsHandler(dataClient *client.DataClient, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cashback/promotions")
		defer span.End()

		promotions, err := dataClient.GetPromotions(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"promotions": promotions})
	}
}

func getRockStarRewardsHandler(dataClient *client.DataClient, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cashback/rewards")
		defer span.End()

		rewards, err := dataClient.GetRockStarRewards(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
	}
}

// ============================================================
// 2. Transactions — GET /v1/cashback/transactions
// ============================================================

func getTransactionsHandler(svc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cashback/transactions")
		defer span.End()

		filters, err := parseFilters(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		page, err := parsePage(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(
			attribute.String("filters.period", string(filters.Period)),
			attribute.String("filters.category", string(filters.Category)),
			attribute.Int("page", page),
		)

		resp, err := svc.GetTransactions(ctx, filters, page)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// getSummaryHandler returns the accumulated totals plus the
// per-category breakdown for the given filters. Accumulated totals
// always span the whole period regardless of the category filter.
func getSummaryHandler(svc *service.TransactionsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cashback/summary")
		defer span.End()

		filters, err := parseFilters(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		allFilters := domain.TransactionFilters{Period: filters.Period, Category: domain.CategoryAll}
		allTxns, err := svc.GetAllFilteredTransactions(ctx, allFilters)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		amounts, err := svc.CalculateCashbackAmounts(allTxns, filters.Period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		breakdownSource := allTxns
		if filters.Category != domain.CategoryAll {
			breakdownSource, err = svc.GetAllFilteredTransactions(ctx, filters)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}
		activities, err := svc.CalculateActivityAmountCashBacks(breakdownSource)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"cashbackAmounts":         amounts,
			"activityAmountCashBacks": activities,
		})
	}
}

// ============================================================
// 3. Periods & translations
// ============================================================

func getPeriodsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"periods": period.Available()})
	}
}

func getTranslationsHandler(translator *i18n.Translator, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.Language(r.URL.Query().Get("lang"))
		if lang == "" {
			lang = translator.Language()
		}
		table, ok := i18n.TableFor(lang)
		if !ok {
			writeError(w, http.StatusBadRequest, "unsupported language: "+string(lang))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"language":     lang,
			"translations": table,
		})
	}
}

// ============================================================
// 4. Service metrics — GET /v1/metrics/cashback
// ============================================================

func cashbackMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetCashbackSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
