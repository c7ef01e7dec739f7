package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/period"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/cashback")

// PageSize is the fixed page size of the transaction listing.
const PageSize = 10

// TransactionsService orchestrates transaction retrieval: paginated
// fetches, full-period fetches, TTL caching keyed by filters, and the
// pure cashback aggregation functions.
type TransactionsService struct {
	source    port.TransactionSource
	pageCache port.Cache[domain.TransactionPage]
	fullCache port.Cache[[]domain.Purchase]
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewTransactionsService creates the service with all dependencies
// injected. The caches are owned by the caller so tests and multiple
// instances stay isolated.
func NewTransactionsService(
	source port.TransactionSource,
	pageCache port.Cache[domain.TransactionPage],
	fullCache port.Cache[[]domain.Purchase],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TransactionsService {
	return &TransactionsService{
		source:    source,
		pageCache: pageCache,
		fullCache: fullCache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the reference-time source, for tests.
func (s *TransactionsService) WithClock(now func() time.Time) *TransactionsService {
	s.now = now
	return s
}

// pageKey serializes (filters, page) into a cache key. The period and
// category segments are what the partition invalidators match on.
func pageKey(f domain.TransactionFilters, page int) string {
	return fmt.Sprintf("%s|%s|p%d", f.Period, f.Category, page)
}

// fullKey serializes filters for full-period queries.
func fullKey(f domain.TransactionFilters) string {
	return fmt.Sprintf("%s|%s|full", f.Period, f.Category)
}

// GetTransactions returns one page of transactions for the filters.
// hasMore is false exactly when page*PageSize >= total.
func (s *TransactionsService) GetTransactions(ctx context.Context, filters domain.TransactionFilters, page int) (*domain.TransactionPage, error) {
	ctx, span := tracer.Start(ctx, "TransactionsService.GetTransactions")
	defer span.End()
	span.SetAttributes(
		attribute.String("filters.period", string(filters.Period)),
		attribute.String("filters.category", string(filters.Category)),
		attribute.Int("page", page),
	)

	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, &domain.ErrValidation{Field: "page", Message: "must be a positive integer"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("get_transactions", time.Since(start))
	}()

	key := pageKey(filters, page)
	if cached, ok := s.pageCache.Get(key); ok {
		s.metrics.IncrCacheHit("transactions")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("transactions")

	total := s.source.TotalCount(filters)
	startIndex := (page - 1) * PageSize
	endIndex := startIndex + PageSize

	result := domain.TransactionPage{
		Transactions: []domain.Purchase{},
		Total:        total,
		HasMore:      endIndex < total,
	}

	if startIndex < total {
		all := s.source.Generate(filters, total)
		if endIndex > len(all) {
			endIndex = len(all)
		}
		result.Transactions = all[startIndex:endIndex]
	} else {
		result.HasMore = false
	}

	s.pageCache.Set(key, result)

	s.logger.Debug("transactions page served",
		zap.String("period", string(filters.Period)),
		zap.String("category", string(filters.Category)),
		zap.Int("page", page),
		zap.Int("total", total),
		zap.Bool("has_more", result.HasMore),
	)

	return &result, nil
}

// GetAllFilteredTransactions returns the full matching set for the
// filters, without pagination. Used for aggregation.
func (s *TransactionsService) GetAllFilteredTransactions(ctx context.Context, filters domain.TransactionFilters) ([]domain.Purchase, error) {
	ctx, span := tracer.Start(ctx, "TransactionsService.GetAllFilteredTransactions")
	defer span.End()

	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := fullKey(filters)
	if cached, ok := s.fullCache.Get(key); ok {
		s.metrics.IncrCacheHit("full-transactions")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("full-transactions")

	txns := s.source.Generate(filters, s.source.FullCount(filters))
	s.fullCache.Set(key, txns)
	return txns, nil
}

// CalculateCashbackAmounts sums cashback over the transactions for the
// period's month total and scales it into the year-to-date figure.
// Pure except for the source-provided annual multiplier, which a real
// ledger backend replaces with the actual year sum.
func (s *TransactionsService) CalculateCashbackAmounts(transactions []domain.Purchase, p domain.Period) (*domain.CashBackAmounts, error) {
	if transactions == nil {
		return nil, &domain.ErrInvalidInput{Op: "CalculateCashbackAmounts", Message: "transactions must be a sequence"}
	}
	if !p.Valid() {
		return nil, &domain.ErrInvalidInput{Op: "CalculateCashbackAmounts", Message: fmt.Sprintf("unrecognized period %q", p)}
	}

	info := period.ResolveAt(p, s.now())

	var monthTotal float64
	for _, txn := range transactions {
		monthTotal += txn.Clearing.CashBackAmount.Amount
	}
	annualTotal := monthTotal * s.source.AnnualMultiplier()

	return &domain.CashBackAmounts{
		MonthAmount: domain.Amount{
			Amount:   domain.Round2(monthTotal),
			Currency: domain.DefaultCurrency,
		},
		AnnualAmount: domain.Amount{
			Amount:   domain.Round2(annualTotal),
			Currency: domain.DefaultCurrency,
		},
		CashbackPeriod: domain.CashbackPeriodRef{
			Month: fmt.Sprintf("%d", info.Month),
			Year:  fmt.Sprintf("%d", info.Year),
		},
	}, nil
}

// CalculateActivityAmountCashBacks groups transactions by category,
// restricted to the filter-modal categories; anything else is dropped
// without error. The percentage shown is the fixed category rate, not
// a computed average. Result is sorted by amount descending. The input
// is never mutated.
func (s *TransactionsService) CalculateActivityAmountCashBacks(transactions []domain.Purchase) ([]domain.ActivityAmountCashBack, error) {
	if transactions == nil {
		return nil, &domain.ErrInvalidInput{Op: "CalculateActivityAmountCashBacks", Message: "transactions must be a sequence"}
	}

	totals := make(map[domain.CategoryCode]float64)
	descriptions := make(map[domain.CategoryCode]string)
	for _, txn := range transactions {
		code := txn.Merchant.CategoryCode
		if !code.Allowed() {
			continue
		}
		totals[code] += txn.Clearing.CashBackAmount.Amount
		if _, ok := descriptions[code]; !ok {
			desc := txn.Merchant.CategoryDescription
			if desc == "" {
				desc = "Otros"
			}
			descriptions[code] = desc
		}
	}

	result := make([]domain.ActivityAmountCashBack, 0, len(totals))
	// Iterate the fixed category order so equal totals keep a stable order.
	for _, code := range domain.AllowedCategories {
		total, ok := totals[code]
		if !ok {
			continue
		}
		result = append(result, domain.ActivityAmountCashBack{
			Name:                domain.CategoryName(code),
			CategoryCode:        code,
			CategoryDescription: descriptions[code],
			CashBackAmount: domain.Amount{
				Amount:   domain.Round2(total),
				Currency: domain.DefaultCurrency,
			},
			CashBackPercentage: domain.CashbackRate(code),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CashBackAmount.Amount > result[j].CashBackAmount.Amount
	})

	return result, nil
}

// InvalidateByPeriod drops all cache entries for a period.
func (s *TransactionsService) InvalidateByPeriod(p domain.Period) {
	prefix := string(p) + "|"
	match := func(key string) bool { return strings.HasPrefix(key, prefix) }
	s.pageCache.DeleteFunc(match)
	s.fullCache.DeleteFunc(match)
}

// InvalidateByCategory drops all cache entries for a category.
func (s *TransactionsService) InvalidateByCategory(c domain.CategoryCode) {
	segment := "|" + string(c) + "|"
	match := func(key string) bool { return strings.Contains(key, segment) }
	s.pageCache.DeleteFunc(match)
	s.fullCache.DeleteFunc(match)
}

// ClearCache drops everything. Used when the active product changes:
// a different card means a disjoint transaction universe.
func (s *TransactionsService) ClearCache() {
	s.pageCache.Clear()
	s.fullCache.Clear()
}
