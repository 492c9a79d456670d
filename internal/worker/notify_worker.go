package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/observability/metrics"
	"github.com/eshift/customer-core/internal/reliability/circuitbreaker"
	"github.com/eshift/customer-core/internal/reliability/retry"
)

const defaultQueueSize = 256

// NotifyWorker drains queued registrations and delivers welcome
// notifications. Delivery runs strictly after the registration committed and
// is fire-and-forget: failures are logged and counted, never propagated.
type NotifyWorker struct {
	sink    domain.NotificationSink
	queue   chan *domain.Customer
	breaker *circuitbreaker.CircuitBreaker
	retry   *retry.Config
	logger  *slog.Logger
}

// NewNotifyWorker creates a new notification worker
func NewNotifyWorker(sink domain.NotificationSink, logger *slog.Logger) *NotifyWorker {
	if logger == nil {
		logger = slog.Default()
	}

	w := &NotifyWorker{
		sink:    sink,
		queue:   make(chan *domain.Customer, defaultQueueSize),
		breaker: circuitbreaker.NewCircuitBreaker(5, 2, 60*time.Second),
		retry: &retry.Config{
			MaxAttempts:       3,
			InitialBackoff:    500 * time.Millisecond,
			MaxBackoff:        10 * time.Second,
			BackoffMultiplier: 2.0,
		},
		logger: logger,
	}
	w.breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("notification circuit state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})
	return w
}

// Enqueue hands a committed registration to the worker. It never blocks the
// registering caller: when the queue is full the notification is dropped
// with a warning.
func (w *NotifyWorker) Enqueue(customer *domain.Customer) {
	select {
	case w.queue <- customer:
	default:
		w.logger.Warn("notification queue full, dropping welcome mail",
			slog.String("email", customer.Email),
		)
		metrics.ObserveNotification("dropped")
	}
}

// Start runs the delivery loop until the context is cancelled.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		case customer := <-w.queue:
			w.deliver(ctx, customer)
		}
	}
}

func (w *NotifyWorker) deliver(ctx context.Context, customer *domain.Customer) {
	if !w.breaker.AllowRequest() {
		w.logger.Warn("notification circuit open, skipping welcome mail",
			slog.String("email", customer.Email),
		)
		metrics.ObserveNotification("skipped")
		return
	}

	_, err := retry.Do(ctx, w.retry, w.logger, "send welcome mail", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, w.sink.SendWelcome(ctx, customer)
	})
	if err != nil {
		w.breaker.RecordFailure()
		metrics.ObserveNotification("failed")
		notifyErr := &domain.NotificationError{Email: customer.Email, Err: err}
		w.logger.Error("welcome notification failed",
			slog.String("email", customer.Email),
			slog.String("customer_number", customer.CustomerNumber),
			slog.String("error", notifyErr.Error()),
		)
		return
	}

	w.breaker.RecordSuccess()
	metrics.ObserveNotification("sent")
}
