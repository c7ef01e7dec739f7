// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
)

// DataFetcher retrieves the static cashback data bundle. The bundle is
// fetched once and cached for the process lifetime; ClearCache forces a
// refetch on the next call.
type DataFetcher interface {
	GetCashbackData(ctx context.Context) (*domain.CashbackData, error)
	ClearCache()
}

// TransactionSource produces the transactions behind the pagination and
// aggregation contracts. The development implementation generates
// synthetic data; a production one queries the ledger backend.
type TransactionSource interface {
	// Generate returns count purchases matching the filters, newest first.
	Generate(filters domain.TransactionFilters, count int) []domain.Purchase
	// TotalCount is the backend's total for a paginated query.
	TotalCount(filters domain.TransactionFilters) int
	// FullCount is the size of a full-period result set.
	FullCount(filters domain.TransactionFilters) int
	// AnnualMultiplier scales a month total into a year-to-date figure.
	AnnualMultiplier() float64
}

// Cache provides generic caching with TTL and partition invalidation.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeleteFunc(match func(key string) bool)
	Clear()
}

// Notifier publishes fire-and-forget user-visible error toasts.
// Business logic never awaits or inspects the outcome.
type Notifier interface {
	DataLoadError()
	TransactionsLoadError()
	CalculationError()
}

// Translator resolves "section.key" lookups to display strings.
// A missing key resolves to the key itself.
type Translator interface {
	T(key string) string
}
