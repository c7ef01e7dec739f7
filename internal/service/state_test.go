package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/cache"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"

	"go.uber.org/zap"
)

type mockDataFetcher struct {
	data    *domain.CashbackData
	err     error
	calls   atomic.Int32
	cleared atomic.Int32
}

func (m *mockDataFetcher) GetCashbackData(ctx context.Context) (*domain.CashbackData, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockDataFetcher) ClearCache() { m.cleared.Add(1) }

type mockNotifier struct {
	dataErrors        atomic.Int32
	transactionErrors atomic.Int32
	calculationErrors atomic.Int32
}

func (m *mockNotifier) DataLoadError()         { m.dataErrors.Add(1) }
func (m *mockNotifier) TransactionsLoadError() { m.transactionErrors.Add(1) }
func (m *mockNotifier) CalculationError()      { m.calculationErrors.Add(1) }

func testBundle() *domain.CashbackData {
	product := domain.Product{
		Type:               "CREDIT",
		CardIdentification: domain.CardIdentification{DisplayNumber: "5555444433332222"},
		Product:            domain.ProductInfo{Name: "Rockstar Gold"},
	}
	return &domain.CashbackData{
		Product:  product,
		Products: []domain.Product{product},
		CashbackAmounts: domain.CashBackAmounts{
			MonthAmount:    domain.Amount{Amount: 120, Currency: domain.DefaultCurrency},
			AnnualAmount:   domain.Amount{Amount: 480, Currency: domain.DefaultCurrency},
			CashbackPeriod: domain.CashbackPeriodRef{Month: "6", Year: "2025"},
		},
		ActivityAmountCashBacks: []domain.ActivityAmountCashBack{},
		Purchases:               []domain.Purchase{},
		Promotions:              []domain.Promotion{{PromotionID: "promo-1"}},
		RockStarRewards:         []domain.Promotion{{PromotionID: "reward-1"}},
	}
}

func newTestStateService(fetcher *mockDataFetcher, src *stubSource, notifier *mockNotifier) *StateService {
	txns := NewTransactionsService(
		src,
		cache.New[domain.TransactionPage](5*time.Minute),
		cache.New[[]domain.Purchase](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return NewStateService(fetcher, txns, notifier, zap.NewNop())
}

func TestStateService_InitialSnapshot(t *testing.T) {
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, &stubSource{total: 25, full: 25, multiplier: 3}, &mockNotifier{})

	snap := svc.Snapshot()
	if snap.CurrentProduct.Product.Name != "Rockstar Credit" {
		t.Errorf("default product = %q, want Rockstar Credit", snap.CurrentProduct.Product.Name)
	}
	if snap.CurrentFilters != domain.DefaultFilters() {
		t.Errorf("initial filters = %+v, want defaults", snap.CurrentFilters)
	}
	if snap.CurrentPage != 1 {
		t.Errorf("initial page = %d, want 1", snap.CurrentPage)
	}
	if snap.LoadingInitialData != LoadLoading {
		t.Errorf("initial loading state = %s, want loading", snap.LoadingInitialData)
	}
}

func TestStateService_LoadInitialData(t *testing.T) {
	fetcher := &mockDataFetcher{data: testBundle()}
	svc := newTestStateService(fetcher, &stubSource{total: 25, full: 25, multiplier: 3}, &mockNotifier{})

	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := svc.Snapshot()
	if snap.CurrentProduct.Product.Name != "Rockstar Gold" {
		t.Errorf("product = %q, want bundle product", snap.CurrentProduct.Product.Name)
	}
	if len(snap.Promotions) != 1 || len(snap.RockStarRewards) != 1 {
		t.Errorf("promotions/rewards not populated: %d/%d", len(snap.Promotions), len(snap.RockStarRewards))
	}
	if snap.LoadingInitialData != LoadSuccess {
		t.Errorf("loading state = %s, want success", snap.LoadingInitialData)
	}
	if len(snap.FilteredPurchases) != PageSize {
		t.Errorf("first page should hold %d transactions, got %d", PageSize, len(snap.FilteredPurchases))
	}
	if snap.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3 for total 25", snap.TotalPages)
	}
	if !snap.HasMoreTransactions {
		t.Error("hasMore should be true after page 1 of 25")
	}
	// Aggregates recomputed from the full set, not the bundle figures.
	if snap.LoadingCalculations != LoadSuccess {
		t.Errorf("calculations state = %s, want success", snap.LoadingCalculations)
	}
	if snap.CashbackAmounts.MonthAmount.Amount <= 0 {
		t.Error("month amount should be recomputed from transactions")
	}
}

func TestStateService_LoadInitialData_FallsBackOnError(t *testing.T) {
	fetcher := &mockDataFetcher{err: &domain.ErrExternalService{Service: "cashback-data", Err: errors.New("boom")}}
	notifier := &mockNotifier{}
	svc := newTestStateService(fetcher, &stubSource{total: 25, full: 25, multiplier: 3}, notifier)

	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatalf("bundle failure must not fail the flow: %v", err)
	}

	snap := svc.Snapshot()
	if snap.LoadingInitialData != LoadError {
		t.Errorf("loading state = %s, want error", snap.LoadingInitialData)
	}
	if snap.CurrentProduct.Product.Name != "Rockstar Credit" {
		t.Errorf("product = %q, want the default", snap.CurrentProduct.Product.Name)
	}
	if notifier.dataErrors.Load() != 1 {
		t.Errorf("data error notifications = %d, want 1", notifier.dataErrors.Load())
	}
	// Transactions still load with the fallback data in place.
	if len(snap.FilteredPurchases) != PageSize {
		t.Errorf("transactions should still load, got %d", len(snap.FilteredPurchases))
	}
}

func TestStateService_LoadMoreTransactions(t *testing.T) {
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, &stubSource{total: 25, full: 25, multiplier: 3}, &mockNotifier{})
	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := svc.LoadMoreTransactions(context.Background()); err != nil {
		t.Fatalf("load more: %v", err)
	}
	snap := svc.Snapshot()
	if snap.CurrentPage != 2 {
		t.Errorf("page = %d, want 2", snap.CurrentPage)
	}
	if len(snap.FilteredPurchases) != 20 {
		t.Errorf("appended list should hold 20, got %d", len(snap.FilteredPurchases))
	}

	if err := svc.LoadMoreTransactions(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap = svc.Snapshot()
	if len(snap.FilteredPurchases) != 25 {
		t.Errorf("appended list should hold all 25, got %d", len(snap.FilteredPurchases))
	}
	if snap.HasMoreTransactions {
		t.Error("hasMore should be false on the last page")
	}

	// Exhausted: further calls are no-ops.
	before := len(snap.FilteredPurchases)
	if err := svc.LoadMoreTransactions(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap = svc.Snapshot()
	if len(snap.FilteredPurchases) != before || snap.CurrentPage != 3 {
		t.Errorf("exhausted loadMore mutated state: %d purchases, page %d", len(snap.FilteredPurchases), snap.CurrentPage)
	}
}

func TestStateService_ApplyFilters(t *testing.T) {
	src := &stubSource{total: 25, full: 25, multiplier: 3}
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, src, &mockNotifier{})
	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := svc.LoadMoreTransactions(context.Background()); err != nil {
		t.Fatal(err)
	}

	filters := domain.TransactionFilters{Period: domain.PeriodPrevious, Category: domain.CategorySupermarket}
	if err := svc.ApplyFilters(context.Background(), filters); err != nil {
		t.Fatalf("apply filters: %v", err)
	}

	snap := svc.Snapshot()
	if snap.CurrentFilters != filters {
		t.Errorf("filters = %+v, want %+v", snap.CurrentFilters, filters)
	}
	if snap.CurrentPage != 1 {
		t.Errorf("page = %d, want reset to 1", snap.CurrentPage)
	}
	if len(snap.FilteredPurchases) != PageSize {
		t.Errorf("list should be replaced with page 1, got %d", len(snap.FilteredPurchases))
	}
	for _, p := range snap.FilteredPurchases {
		if p.Merchant.CategoryCode != domain.CategorySupermarket {
			t.Errorf("transaction %s escaped the category filter: %s", p.CardTransactionID, p.Merchant.CategoryCode)
		}
	}
}

func TestStateService_ApplyFilters_Invalid(t *testing.T) {
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, &stubSource{total: 25, full: 25, multiplier: 3}, &mockNotifier{})

	err := svc.ApplyFilters(context.Background(), domain.TransactionFilters{Period: "soon", Category: domain.CategoryAll})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Errorf("got %v, want *domain.ErrValidation", err)
	}
}

func TestStateService_UpdateCashbackCalculations_CategoryScope(t *testing.T) {
	// With a specific category selected the accumulated totals must still
	// cover every category, while the breakdown narrows.
	src := &stubSource{total: 25, full: 25, multiplier: 3}
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, src, &mockNotifier{})
	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatal(err)
	}
	allSnap := svc.Snapshot()

	filters := domain.TransactionFilters{Period: domain.PeriodCurrent, Category: domain.CategoryTelecom}
	if err := svc.ApplyFilters(context.Background(), filters); err != nil {
		t.Fatal(err)
	}

	snap := svc.Snapshot()
	if snap.CashbackAmounts.MonthAmount.Amount != allSnap.CashbackAmounts.MonthAmount.Amount {
		t.Errorf("accumulated month total changed with the category filter: %v vs %v",
			snap.CashbackAmounts.MonthAmount.Amount, allSnap.CashbackAmounts.MonthAmount.Amount)
	}
	if len(snap.ActivityAmountCashBacks) != 1 {
		t.Fatalf("breakdown should narrow to one category, got %d", len(snap.ActivityAmountCashBacks))
	}
	if snap.ActivityAmountCashBacks[0].CategoryCode != domain.CategoryTelecom {
		t.Errorf("breakdown category = %s, want Tel", snap.ActivityAmountCashBacks[0].CategoryCode)
	}
}

func TestStateService_SelectProduct(t *testing.T) {
	fetcher := &mockDataFetcher{data: testBundle()}
	src := &stubSource{total: 25, full: 25, multiplier: 3}
	svc := newTestStateService(fetcher, src, &mockNotifier{})
	if err := svc.LoadInitialData(context.Background()); err != nil {
		t.Fatal(err)
	}
	genBefore := src.generateCalls.Load()

	next := domain.Product{
		Type:    "DEBIT",
		Product: domain.ProductInfo{Name: "Rockstar Debit"},
	}
	if err := svc.SelectProduct(context.Background(), next); err != nil {
		t.Fatalf("select product: %v", err)
	}

	snap := svc.Snapshot()
	// The bundle reload overwrites the selection with the bundle product;
	// what matters is that the full pipeline reran from an empty cache.
	if snap.LoadingInitialData != LoadSuccess || snap.LoadingTransactions != LoadSuccess {
		t.Errorf("reload states = %s/%s, want success", snap.LoadingInitialData, snap.LoadingTransactions)
	}
	if src.generateCalls.Load() == genBefore {
		t.Error("product switch should clear the transaction cache and regenerate")
	}
	if fetcher.calls.Load() != 2 {
		t.Errorf("bundle fetches = %d, want 2", fetcher.calls.Load())
	}
	if snap.CurrentPage != 1 {
		t.Errorf("page = %d, want reset to 1", snap.CurrentPage)
	}
}

func TestStateService_TransactionErrorNotifies(t *testing.T) {
	notifier := &mockNotifier{}
	src := &stubSource{total: 25, full: 25, multiplier: 3}
	svc := newTestStateService(&mockDataFetcher{data: testBundle()}, src, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.LoadTransactions(ctx, 1, false); err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if notifier.transactionErrors.Load() != 1 {
		t.Errorf("transaction error notifications = %d, want 1", notifier.transactionErrors.Load())
	}
	snap := svc.Snapshot()
	if snap.LoadingTransactions != LoadError {
		t.Errorf("loading state = %s, want error", snap.LoadingTransactions)
	}
}

// gatedSource blocks its first Generate call until released and marks
// the purchases it produces, so a test can hold a fetch in flight and
// later detect whether its results leaked into state.
type gatedSource struct {
	stubSource
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		stubSource: stubSource{total: 25, full: 25, multiplier: 3},
		entered:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (g *gatedSource) Generate(filters domain.TransactionFilters, count int) []domain.Purchase {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
		txns := g.stubSource.Generate(filters, count)
		for i := range txns {
			txns[i].Merchant.Name = "STALE MERCHANT"
		}
		return txns
	}
	return g.stubSource.Generate(filters, count)
}

func newGatedStateService(fetcher *mockDataFetcher, src *gatedSource, notifier *mockNotifier) *StateService {
	txns := NewTransactionsService(
		src,
		cache.New[domain.TransactionPage](5*time.Minute),
		cache.New[[]domain.Purchase](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return NewStateService(fetcher, txns, notifier, zap.NewNop())
}

func TestStateService_ApplyFiltersSupersedesInFlightLoad(t *testing.T) {
	src := newGatedSource()
	svc := newGatedStateService(&mockDataFetcher{data: testBundle()}, src, &mockNotifier{})
	ctx := context.Background()

	staleDone := make(chan error, 1)
	go func() {
		staleDone <- svc.LoadTransactions(ctx, 1, false)
	}()

	select {
	case <-src.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch never reached the source")
	}

	newFilters := domain.TransactionFilters{Period: domain.PeriodPrevious, Category: domain.CategoryPharmacy}
	if err := svc.ApplyFilters(ctx, newFilters); err != nil {
		t.Fatalf("apply filters: %v", err)
	}

	close(src.release)
	select {
	case err := <-staleDone:
		if err != nil {
			t.Fatalf("superseded load should discard quietly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load never returned")
	}

	snap := svc.Snapshot()
	if snap.CurrentFilters != newFilters {
		t.Errorf("filters = %+v, want %+v", snap.CurrentFilters, newFilters)
	}
	if snap.CurrentPage != 1 {
		t.Errorf("page = %d, want 1", snap.CurrentPage)
	}
	for _, p := range snap.FilteredPurchases {
		if p.Merchant.Name == "STALE MERCHANT" {
			t.Fatal("purchases from the superseded load leaked into state")
		}
		if p.Merchant.CategoryCode != domain.CategoryPharmacy {
			t.Errorf("purchase category = %s, want Far only", p.Merchant.CategoryCode)
		}
	}
	if snap.LoadingTransactions != LoadSuccess {
		t.Errorf("loading state = %s, want success", snap.LoadingTransactions)
	}
}

func TestStateService_SelectProductSupersedesInFlightLoad(t *testing.T) {
	src := newGatedSource()
	fetcher := &mockDataFetcher{data: testBundle()}
	svc := newGatedStateService(fetcher, src, &mockNotifier{})
	ctx := context.Background()

	staleDone := make(chan error, 1)
	go func() {
		staleDone <- svc.LoadTransactions(ctx, 1, false)
	}()

	select {
	case <-src.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first fetch never reached the source")
	}

	next := domain.Product{Product: domain.ProductInfo{Name: "Rockstar Platinum"}}
	if err := svc.SelectProduct(ctx, next); err != nil {
		t.Fatalf("select product: %v", err)
	}

	close(src.release)
	select {
	case err := <-staleDone:
		if err != nil {
			t.Fatalf("superseded load should discard quietly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load never returned")
	}

	snap := svc.Snapshot()
	for _, p := range snap.FilteredPurchases {
		if p.Merchant.Name == "STALE MERCHANT" {
			t.Fatal("purchases from the superseded load leaked into state")
		}
	}
	if len(snap.FilteredPurchases) == 0 {
		t.Error("product switch should still load a fresh first page")
	}
	if snap.CurrentPage != 1 {
		t.Errorf("page = %d, want 1", snap.CurrentPage)
	}
}
