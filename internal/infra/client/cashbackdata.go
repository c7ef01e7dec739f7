package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

// DataClient fetches the static cashback data bundle from the Cashback
// Data API. The bundle is fetched once and cached for the process
// lifetime; ClearCache forces a refetch.
type DataClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu     sync.Mutex
	cached *domain.CashbackData
}

// NewDataClient creates a new DataClient.
func NewDataClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *DataClient {
	return &DataClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// GetCashbackData fetches the bundle with retry, circuit breaker and
// tracing. A payload that decodes but fails structural validation
// degrades to empty defaults: the screen renders with zero amounts
// instead of crashing. Transport failures surface as
// ErrExternalService for the caller's error path.
func (c *DataClient) GetCashbackData(ctx context.Context) (*domain.CashbackData, error) {
	ctx, span := tracer.Start(ctx, "DataClient.GetCashbackData")
	defer span.End()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		return c.cached, nil
	}

	var data domain.CashbackData

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			url := fmt.Sprintf("%s/v1/cashback/data-bundle", c.baseURL)
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "cashback-data", ID: url}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("cashback data API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&data)
		})
	})

	if err != nil {
		c.metrics.IncrExternalError("cashback-data")
		return nil, &domain.ErrExternalService{Service: "cashback-data", Err: err}
	}

	if !domain.ValidCashbackData(&data) {
		// Malformed payload never propagates; the caller gets a
		// renderable empty bundle.
		c.logger.Error("cashback data failed structural validation, using empty defaults",
			zap.Error(&domain.ErrDataShape{Reason: "missing required bundle fields"}),
		)
		empty := emptyData()
		c.cached = empty
		return empty, nil
	}

	c.cached = &data
	return &data, nil
}

// ClearCache drops the cached bundle so the next call refetches.
func (c *DataClient) ClearCache() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// GetProduct returns the bundle's active product.
func (c *DataClient) GetProduct(ctx context.Context) (*domain.Product, error) {
	data, err := c.GetCashbackData(ctx)
	if err != nil {
		return nil, err
	}
	return &data.Product, nil
}

// GetPromotions returns the bundle's exclusive promotions.
func (c *DataClient) GetPromotions(ctx context.Context) ([]domain.Promotion, error) {
	data, err := c.GetCashbackData(ctx)
	if err != nil {
		return nil, err
	}
	return data.Promotions, nil
}

// GetRockStarRewards returns the bundle's RockStar Rewards promotions.
func (c *DataClient) GetRockStarRewards(ctx context.Context) ([]domain.Promotion, error) {
	data, err := c.GetCashbackData(ctx)
	if err != nil {
		return nil, err
	}
	return data.RockStarRewards, nil
}

func emptyData() *domain.CashbackData {
	return &domain.CashbackData{
		Products:                []domain.Product{},
		ActivityAmountCashBacks: []domain.ActivityAmountCashBack{},
		Purchases:               []domain.Purchase{},
		Promotions:              []domain.Promotion{},
		RockStarRewards:         []domain.Promotion{},
	}
}
