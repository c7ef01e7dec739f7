package service

import (
	"context"
	"math"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LoadingState tracks one asynchronous concern of the screen.
type LoadingState string

const (
	LoadIdle    LoadingState = "idle"
	LoadLoading LoadingState = "loading"
	LoadSuccess LoadingState = "success"
	LoadError   LoadingState = "error"
)

// Snapshot is an immutable copy of the screen state handed to callers.
// Views read snapshots; all writes go through the StateService.
type Snapshot struct {
	CurrentProduct          domain.Product                  `json:"currentProduct"`
	Products                []domain.Product                `json:"products"`
	CashbackAmounts         domain.CashBackAmounts          `json:"cashbackAmounts"`
	ActivityAmountCashBacks []domain.ActivityAmountCashBack `json:"activityAmountCashBacks"`
	FilteredPurchases       []domain.Purchase               `json:"filteredPurchases"`
	Promotions              []domain.Promotion              `json:"promotions"`
	RockStarRewards         []domain.Promotion              `json:"rockStarRewards"`

	CurrentFilters      domain.TransactionFilters `json:"currentFilters"`
	CurrentPage         int                       `json:"currentPage"`
	TotalPages          int                       `json:"totalPages"`
	HasMoreTransactions bool                      `json:"hasMoreTransactions"`

	LoadingInitialData  LoadingState `json:"loadingInitialData"`
	LoadingTransactions LoadingState `json:"loadingTransactions"`
	LoadingCalculations LoadingState `json:"loadingCalculations"`
}

// StateService is the single source of truth for the cashback screen.
// It mediates every read and write across the data service and the
// transactions service so consumers stay presentation-only.
type StateService struct {
	data         port.DataFetcher
	transactions *TransactionsService
	notifier     port.Notifier
	logger       *zap.Logger

	// guarded by the service's own single-writer discipline: all
	// mutating methods run under mu.
	mu    chan struct{} // 1-slot semaphore usable with ctx
	state Snapshot

	// generation counters discard results from superseded in-flight
	// loads (filter changes and product switches bump them).
	txGen   uint64
	calcGen uint64
}

// NewStateService creates the state service with its collaborators.
func NewStateService(
	data port.DataFetcher,
	transactions *TransactionsService,
	notifier port.Notifier,
	logger *zap.Logger,
) *StateService {
	s := &StateService{
		data:         data,
		transactions: transactions,
		notifier:     notifier,
		logger:       logger,
		mu:           make(chan struct{}, 1),
	}
	s.state = Snapshot{
		CurrentProduct:          defaultProduct(),
		Products:                []domain.Product{},
		CashbackAmounts:         defaultCashbackAmounts(),
		ActivityAmountCashBacks: []domain.ActivityAmountCashBack{},
		FilteredPurchases:       []domain.Purchase{},
		Promotions:              []domain.Promotion{},
		RockStarRewards:         []domain.Promotion{},
		CurrentFilters:          domain.DefaultFilters(),
		CurrentPage:             1,
		TotalPages:              1,
		LoadingInitialData:      LoadLoading,
		LoadingTransactions:     LoadIdle,
		LoadingCalculations:     LoadIdle,
	}
	return s
}

func (s *StateService) lock(ctx context.Context) error {
	// Fast path keeps an uncontended acquire deterministic even when
	// the context is already cancelled.
	select {
	case s.mu <- struct{}{}:
		return nil
	default:
	}
	select {
	case s.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *StateService) unlock() { <-s.mu }

// Snapshot returns a copy of the current state. Slices are copied so
// callers can never mutate service state through a snapshot.
func (s *StateService) Snapshot() Snapshot {
	s.mu <- struct{}{}
	defer s.unlock()
	return s.copyState()
}

func (s *StateService) copyState() Snapshot {
	snap := s.state
	snap.Products = append([]domain.Product(nil), s.state.Products...)
	snap.ActivityAmountCashBacks = append([]domain.ActivityAmountCashBack(nil), s.state.ActivityAmountCashBacks...)
	snap.FilteredPurchases = append([]domain.Purchase(nil), s.state.FilteredPurchases...)
	snap.Promotions = append([]domain.Promotion(nil), s.state.Promotions...)
	snap.RockStarRewards = append([]domain.Promotion(nil), s.state.RockStarRewards...)
	return snap
}

// LoadInitialData fetches the static bundle and populates the screen,
// then loads the first page of transactions. On bundle failure the
// screen degrades to the built-in defaults, shows a notification and
// still loads transactions.
func (s *StateService) LoadInitialData(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	s.state.LoadingInitialData = LoadLoading
	s.unlock()

	data, err := s.data.GetCashbackData(ctx)

	if lockErr := s.lock(ctx); lockErr != nil {
		return lockErr
	}
	if err != nil {
		s.logger.Warn("initial data load failed, using defaults", zap.Error(err))
		s.notifier.DataLoadError()
		s.state.ActivityAmountCashBacks = initialActivityAmountCashBacks()
		s.state.LoadingInitialData = LoadError
	} else {
		s.state.CurrentProduct = data.Product
		s.state.Products = data.Products
		s.state.CashbackAmounts = data.CashbackAmounts
		s.state.ActivityAmountCashBacks = data.ActivityAmountCashBacks
		s.state.Promotions = data.Promotions
		s.state.RockStarRewards = data.RockStarRewards
		s.state.LoadingInitialData = LoadSuccess
	}
	s.unlock()

	return s.LoadTransactions(ctx, 1, false)
}

// LoadTransactions loads one page with the current filters. When
// append is true the page is tail-appended to the existing ordered
// list; otherwise it replaces the list and the aggregates are
// recomputed.
func (s *StateService) LoadTransactions(ctx context.Context, page int, appendPage bool) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	s.state.LoadingTransactions = LoadLoading
	filters := s.state.CurrentFilters
	gen := s.txGen
	s.unlock()

	resp, err := s.transactions.GetTransactions(ctx, filters, page)

	if lockErr := s.lock(ctx); lockErr != nil {
		return lockErr
	}
	if gen != s.txGen {
		// A newer ApplyFilters or SelectProduct superseded this load;
		// its results must not overwrite the fresher state.
		s.unlock()
		s.logger.Debug("discarding superseded transaction load", zap.Int("page", page))
		return nil
	}
	if err != nil {
		s.notifier.TransactionsLoadError()
		s.state.LoadingTransactions = LoadError
		s.unlock()
		return err
	}

	if appendPage {
		s.state.FilteredPurchases = append(s.state.FilteredPurchases, resp.Transactions...)
	} else {
		s.state.FilteredPurchases = resp.Transactions
	}
	s.state.TotalPages = int(math.Ceil(float64(resp.Total) / float64(PageSize)))
	s.state.CurrentPage = page
	s.state.HasMoreTransactions = resp.HasMore
	s.state.LoadingTransactions = LoadSuccess
	s.unlock()

	if !appendPage {
		return s.UpdateCashbackCalculations(ctx)
	}
	return nil
}

// LoadMoreTransactions advances one page with append semantics. No-op
// unless there are more pages and no load is in flight.
func (s *StateService) LoadMoreTransactions(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	if !s.state.HasMoreTransactions || s.state.LoadingTransactions == LoadLoading {
		s.unlock()
		return nil
	}
	nextPage := s.state.CurrentPage + 1
	s.unlock()

	return s.LoadTransactions(ctx, nextPage, true)
}

// ApplyFilters stores new filters, invalidates the cache partitions
// that changed, resets to page 1 and replace-loads.
func (s *StateService) ApplyFilters(ctx context.Context, filters domain.TransactionFilters) error {
	if err := filters.Validate(); err != nil {
		return err
	}

	if err := s.lock(ctx); err != nil {
		return err
	}
	previous := s.state.CurrentFilters
	if previous.Period != filters.Period {
		s.transactions.InvalidateByPeriod(previous.Period)
	}
	if previous.Category != filters.Category {
		s.transactions.InvalidateByCategory(previous.Category)
	}
	s.state.CurrentFilters = filters
	s.state.CurrentPage = 1
	s.txGen++
	s.calcGen++
	s.unlock()

	s.logger.Info("filters applied",
		zap.String("period", string(filters.Period)),
		zap.String("category", string(filters.Category)),
	)

	return s.LoadTransactions(ctx, 1, false)
}

// UpdateCashbackCalculations recomputes the accumulated totals and the
// per-category breakdown. The accumulated totals always cover the
// whole period (category forced to "all"); the breakdown honors the
// active category filter, which needs a second scoped fetch when a
// specific category is selected.
func (s *StateService) UpdateCashbackCalculations(ctx context.Context) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	s.state.LoadingCalculations = LoadLoading
	filters := s.state.CurrentFilters
	gen := s.calcGen
	s.unlock()

	accumulatedFilters := domain.TransactionFilters{
		Period:   filters.Period,
		Category: domain.CategoryAll,
	}

	var (
		allTxns      []domain.Purchase
		categoryTxns []domain.Purchase
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allTxns, err = s.transactions.GetAllFilteredTransactions(gCtx, accumulatedFilters)
		return err
	})
	if filters.Category != domain.CategoryAll {
		g.Go(func() error {
			var err error
			categoryTxns, err = s.transactions.GetAllFilteredTransactions(gCtx, filters)
			return err
		})
	}

	err := g.Wait()

	var (
		amounts    *domain.CashBackAmounts
		activities []domain.ActivityAmountCashBack
	)
	if err == nil {
		amounts, err = s.transactions.CalculateCashbackAmounts(allTxns, filters.Period)
	}
	if err == nil {
		breakdownSource := allTxns
		if filters.Category != domain.CategoryAll {
			breakdownSource = categoryTxns
		}
		activities, err = s.transactions.CalculateActivityAmountCashBacks(breakdownSource)
	}

	if lockErr := s.lock(ctx); lockErr != nil {
		return lockErr
	}
	defer s.unlock()
	if gen != s.calcGen {
		s.logger.Debug("discarding superseded aggregate recompute")
		return nil
	}
	if err != nil {
		s.notifier.CalculationError()
		s.state.LoadingCalculations = LoadError
		return err
	}

	s.state.CashbackAmounts = *amounts
	s.state.ActivityAmountCashBacks = activities
	s.state.LoadingCalculations = LoadSuccess
	return nil
}

// SelectProduct switches the active card. A different card means a
// disjoint transaction universe, so the entire transaction cache is
// cleared before the full initial-load sequence reruns.
func (s *StateService) SelectProduct(ctx context.Context, product domain.Product) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	s.state.CurrentProduct = product
	s.transactions.ClearCache()
	s.txGen++
	s.calcGen++
	s.unlock()

	s.logger.Info("product selected", zap.String("product", product.Product.Name))

	return s.LoadInitialData(ctx)
}

// defaultProduct is the placeholder card shown before the bundle loads.
func defaultProduct() domain.Product {
	return domain.Product{
		Type:               "CREDIT",
		CardIdentification: domain.CardIdentification{DisplayNumber: "1234567890127896"},
		Image:              domain.CardImage{ImageNumber: "74141001253"},
		Product:            domain.ProductInfo{Name: "Rockstar Credit"},
		AssociatedAccounts: []domain.AssociatedAccount{
			{
				Account: domain.Account{
					Contract:   domain.Contract{ContractID: "contract-1"},
					TypeCode:   "CREDIT",
					StatusInfo: domain.StatusInfo{StatusCode: "ACTIVE"},
					Balances:   []domain.Amount{},
				},
			},
		},
	}
}

func defaultCashbackAmounts() domain.CashBackAmounts {
	return domain.CashBackAmounts{
		MonthAmount:    domain.Amount{Amount: 0, Currency: domain.DefaultCurrency},
		AnnualAmount:   domain.Amount{Amount: 0, Currency: domain.DefaultCurrency},
		CashbackPeriod: domain.CashbackPeriodRef{Month: "1", Year: "2025"},
	}
}

// initialActivityAmountCashBacks are the fallback aggregates used when
// the bundle cannot be loaded.
func initialActivityAmountCashBacks() []domain.ActivityAmountCashBack {
	return []domain.ActivityAmountCashBack{
		{
			Name:                "Supermercados",
			CategoryCode:        domain.CategorySupermarket,
			CategoryDescription: "Supermercados",
			CashBackAmount:      domain.Amount{Amount: 77.00, Currency: domain.DefaultCurrency},
			CashBackPercentage:  1,
		},
		{
			Name:                "Restaurantes",
			CategoryCode:        domain.CategoryRestaurant,
			CategoryDescription: "Restaurantes",
			CashBackAmount:      domain.Amount{Amount: 30.50, Currency: domain.DefaultCurrency},
			CashBackPercentage:  5,
		},
		{
			Name:                "Farmacias",
			CategoryCode:        domain.CategoryPharmacy,
			CategoryDescription: "Farmacias",
			CashBackAmount:      domain.Amount{Amount: 27.00, Currency: domain.DefaultCurrency},
			CashBackPercentage:  6,
		},
		{
			Name:                "Telecomunicaciones",
			CategoryCode:        domain.CategoryTelecom,
			CategoryDescription: "Telecomunicaciones",
			CashBackAmount:      domain.Amount{Amount: 15.00, Currency: domain.DefaultCurrency},
			CashBackPercentage:  4,
		},
	}
}
