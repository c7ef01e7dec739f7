package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Screen sessions
//
// A session is one client's instance of the cashback screen: its own
// filters, pagination cursor and transaction caches. The mobile app
// creates one on screen entry and drives it through these endpoints.
// ============================================================

type sessionResponse struct {
	SessionID string           `json:"sessionId"`
	State     service.Snapshot `json:"state"`
}

func createSessionHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cashback/sessions")
		defer span.End()

		id, state, err := sessions.Create(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("session.id", id))

		writeJSON(w, http.StatusCreated, sessionResponse{
			SessionID: id,
			State:     state.Snapshot(),
		})
	}
}

func getSessionStateHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/cashback/sessions/{sessionId}/state")
		defer span.End()

		state, err := sessions.Get(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state.Snapshot())
	}
}

func applySessionFiltersHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/cashback/sessions/{sessionId}/filters")
		defer span.End()

		state, err := sessions.Get(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var filters domain.TransactionFilters
		if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(filters); err != nil {
			writeError(w, http.StatusBadRequest, "filters must name a known period and category")
			return
		}
		span.SetAttributes(
			attribute.String("filters.period", string(filters.Period)),
			attribute.String("filters.category", string(filters.Category)),
		)

		if err := state.ApplyFilters(ctx, filters); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state.Snapshot())
	}
}

func loadMoreSessionHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cashback/sessions/{sessionId}/transactions/more")
		defer span.End()

		state, err := sessions.Get(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if err := state.LoadMoreTransactions(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state.Snapshot())
	}
}

func selectSessionProductHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/cashback/sessions/{sessionId}/product")
		defer span.End()

		state, err := sessions.Get(chi.URLParam(r, "sessionId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var product domain.Product
		if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if product.Product.Name == "" {
			writeError(w, http.StatusBadRequest, "product name is required")
			return
		}

		if err := state.SelectProduct(ctx, product); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, state.Snapshot())
	}
}

func deleteSessionHandler(sessions *service.SessionManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "DELETE /v1/cashback/sessions/{sessionId}")
		defer span.End()

		sessions.Delete(chi.URLParam(r, "sessionId"))
		w.WriteHeader(http.StatusNoContent)
	}
}
