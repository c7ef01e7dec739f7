package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"

	"go.uber.org/zap"
)

func newTestSessionManager(ttl time.Duration) *SessionManager {
	return NewSessionManager(
		&mockDataFetcher{data: testBundle()},
		func() port.TransactionSource { return &stubSource{total: 25, full: 25, multiplier: 3} },
		&mockNotifier{},
		observability.NewMetrics(),
		zap.NewNop(),
		ttl,
		5*time.Minute,
		4,
	)
}

func TestSessionManager_CreateAndGet(t *testing.T) {
	mgr := newTestSessionManager(time.Minute)

	id, state, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("create: empty id")
	}
	if got := state.Snapshot(); len(got.FilteredPurchases) != PageSize {
		t.Errorf("bootstrap loaded %d transactions, want %d", len(got.FilteredPurchases), PageSize)
	}

	fetched, err := mgr.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched != state {
		t.Error("get returned a different state service")
	}
}

func TestSessionManager_SessionsAreIsolated(t *testing.T) {
	mgr := newTestSessionManager(time.Minute)

	idA, stateA, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	_, stateB, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	filters := domain.TransactionFilters{Period: domain.PeriodPrevious, Category: domain.CategoryTelecom}
	if err := stateA.ApplyFilters(context.Background(), filters); err != nil {
		t.Fatal(err)
	}

	if got := stateB.Snapshot().CurrentFilters; got != domain.DefaultFilters() {
		t.Errorf("session B filters changed to %+v after session A filtered", got)
	}
	if got, _ := mgr.Get(idA); got.Snapshot().CurrentFilters != filters {
		t.Errorf("session A lost its filters")
	}
}

func TestSessionManager_UnknownAndDeleted(t *testing.T) {
	mgr := newTestSessionManager(time.Minute)

	var notFound *domain.ErrNotFound
	if _, err := mgr.Get("missing"); !errors.As(err, &notFound) {
		t.Errorf("unknown id: got %v, want *domain.ErrNotFound", err)
	}

	id, _, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	mgr.Delete(id)
	if _, err := mgr.Get(id); !errors.As(err, &notFound) {
		t.Errorf("deleted id: got %v, want *domain.ErrNotFound", err)
	}
}

func TestSessionManager_Expiry(t *testing.T) {
	mgr := newTestSessionManager(20 * time.Millisecond)

	id, _, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)

	var notFound *domain.ErrNotFound
	if _, err := mgr.Get(id); !errors.As(err, &notFound) {
		t.Errorf("expired id: got %v, want *domain.ErrNotFound", err)
	}
}
