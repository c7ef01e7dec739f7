package service

import (
	"context"
	"time"

	"github.com/rockstar-cards/cashback-bfa-go/internal/domain"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/cache"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/resilience"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager owns one StateService per client session. Each session
// gets its own transaction caches so filter changes and product
// switches in one session never evict another session's entries.
// Sessions expire after a TTL of inactivity.
type SessionManager struct {
	data      port.DataFetcher
	newSource func() port.TransactionSource
	notifier  port.Notifier
	metrics   *observability.Metrics
	logger    *zap.Logger

	sessions *cache.InMemory[*StateService]
	cacheTTL time.Duration
	bulkhead *resilience.Bulkhead
}

// NewSessionManager wires the per-session factories. newSource is
// called once per session so sessions draw from independent generators.
func NewSessionManager(
	data port.DataFetcher,
	newSource func() port.TransactionSource,
	notifier port.Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	sessionTTL time.Duration,
	cacheTTL time.Duration,
	maxConcurrentBootstraps int,
) *SessionManager {
	return &SessionManager{
		data:      data,
		newSource: newSource,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		sessions:  cache.New[*StateService](sessionTTL),
		cacheTTL:  cacheTTL,
		bulkhead:  resilience.NewBulkhead(maxConcurrentBootstraps),
	}
}

// Create builds a new session, runs the initial load and returns its id.
// A failed bundle fetch still yields a usable session with defaults.
func (m *SessionManager) Create(ctx context.Context) (string, *StateService, error) {
	// Bootstraps hit the upstream bundle API and generate a full page
	// of transactions; the bulkhead keeps a burst of screen entries
	// from stampeding it.
	if err := m.bulkhead.Acquire(ctx); err != nil {
		return "", nil, err
	}
	defer m.bulkhead.Release()

	id := uuid.NewString()

	txns := NewTransactionsService(
		m.newSource(),
		cache.New[domain.TransactionPage](m.cacheTTL),
		cache.New[[]domain.Purchase](m.cacheTTL),
		m.metrics,
		m.logger,
	)
	state := NewStateService(m.data, txns, m.notifier, m.logger)

	if err := state.LoadInitialData(ctx); err != nil {
		return "", nil, err
	}

	m.sessions.Set(id, state)
	m.logger.Info("cashback session created", zap.String("session_id", id))
	return id, state, nil
}

// Get returns the session's state service, refreshing its TTL.
func (m *SessionManager) Get(id string) (*StateService, error) {
	state, ok := m.sessions.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	m.sessions.Set(id, state)
	return state, nil
}

// Delete removes a session immediately.
func (m *SessionManager) Delete(id string) {
	m.sessions.Delete(id)
	m.logger.Info("cashback session closed", zap.String("session_id", id))
}
