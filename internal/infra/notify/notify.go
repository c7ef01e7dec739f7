// Package notify publishes user-visible error toasts. Notifications
// are fire-and-forget: business logic never waits on them, and a
// failed publish only costs the user a toast.
package notify

import (
	"github.com/rockstar-cards/cashback-bfa-go/internal/infra/observability"
	"github.com/rockstar-cards/cashback-bfa-go/internal/port"

	"go.uber.org/zap"
)

// ToastNotifier forwards canned error toasts to the mobile shell's
// notification channel. This implementation records them in the log
// and metrics; the hybrid shell picks them up from the response
// envelope.
type ToastNotifier struct {
	translator port.Translator
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// New creates a ToastNotifier.
func New(translator port.Translator, metrics *observability.Metrics, logger *zap.Logger) *ToastNotifier {
	return &ToastNotifier{
		translator: translator,
		metrics:    metrics,
		logger:     logger,
	}
}

// DataLoadError publishes the initial-data load failure toast.
func (n *ToastNotifier) DataLoadError() {
	n.publish("data-load", "errors.errorCargarDatos")
}

// TransactionsLoadError publishes the transaction load failure toast.
func (n *ToastNotifier) TransactionsLoadError() {
	n.publish("transactions-load", "errors.errorCargarTransacciones")
}

// CalculationError publishes the aggregation failure toast.
func (n *ToastNotifier) CalculationError() {
	n.publish("calculation", "errors.errorCalculos")
}

func (n *ToastNotifier) publish(kind, key string) {
	n.metrics.IncrNotification(kind)
	n.logger.Warn("user notification",
		zap.String("kind", kind),
		zap.String("message", n.translator.T(key)),
	)
}
