// Package resilience guards outbound sinks with a circuit breaker and a
// per-write timeout. A guarded sink satisfies state.Recorder: write failures
// are logged and counted, never surfaced to the caller.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/metrics"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/state"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

// Sink is an outbound destination for domain events.
type Sink interface {
	Name() string
	Write(ctx context.Context, event dto.Event) error
}

type metricsCollector interface {
	RecordSinkWrite(sink string, ok bool, d time.Duration)
	RecordSinkSkipped(sink string)
	RecordCircuitState(sink string, state metrics.CircuitState)
}

type noopMetrics struct{}

func (noopMetrics) RecordSinkWrite(string, bool, time.Duration)     {}
func (noopMetrics) RecordSinkSkipped(string)                        {}
func (noopMetrics) RecordCircuitState(string, metrics.CircuitState) {}

type Config struct {
	// Timeout bounds a single write. Zero disables it.
	Timeout time.Duration
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval clears the failure counts while closed.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// FailureThreshold consecutive failures trip the breaker.
	FailureThreshold uint32
}

func DefaultConfig(timeout time.Duration) Config {
	return Config{
		Timeout:          timeout,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

type GuardedSink struct {
	sink    Sink
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	metrics metricsCollector
	now     func() time.Time
}

var _ state.Recorder = (*GuardedSink)(nil)

// NewGuardedSink wraps sink. m may be nil.
func NewGuardedSink(sink Sink, cfg Config, m metricsCollector, log *slog.Logger) *GuardedSink {
	if m == nil {
		m = noopMetrics{}
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	log = log.With("sink", sink.Name())

	g := &GuardedSink{
		sink:    sink,
		timeout: cfg.Timeout,
		metrics: m,
		now:     time.Now,
	}

	g.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        sink.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			g.metrics.RecordCircuitState(name, circuitState(to))
		},
	})

	log.Info("guarded sink initialized",
		"timeout", cfg.Timeout.String(),
		"failure_threshold", cfg.FailureThreshold,
		"open_timeout", cfg.OpenTimeout.String(),
	)
	return g
}

func (g *GuardedSink) Name() string {
	return g.sink.Name()
}

// State reports the breaker state, for health output and tests.
func (g *GuardedSink) State() gobreaker.State {
	return g.cb.State()
}

func (g *GuardedSink) ATMAdded(ctx context.Context, atm models.ATM) {
	g.publish(ctx, dto.EventATMAdded, atm)
}

func (g *GuardedSink) SlotBooked(ctx context.Context, booking models.BookedSlot) {
	g.publish(ctx, dto.EventBookingCreated, booking)
}

func (g *GuardedSink) BookingConfirmed(ctx context.Context, booking models.BookedSlot) {
	g.publish(ctx, dto.EventBookingConfirmed, booking)
}

func (g *GuardedSink) BookingCancelled(ctx context.Context, booking models.BookedSlot, reason string) {
	eventType := dto.EventBookingCancelled
	if reason == state.ReasonExpired {
		eventType = dto.EventBookingExpired
	}
	g.publish(ctx, eventType, booking)
}

func (g *GuardedSink) TransactionAdded(ctx context.Context, tx models.Transaction) {
	g.publish(ctx, dto.EventTransaction, tx)
}

// publish writes the event through the breaker. The request's cancellation
// is dropped so a client disconnect does not abort the write.
func (g *GuardedSink) publish(ctx context.Context, eventType string, data any) {
	log := logger.FromContext(ctx).With("sink", g.sink.Name(), "event_type", eventType)
	ctx = logger.Detach(ctx)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	event := dto.Event{Type: eventType, Timestamp: g.now().UTC(), Data: data}

	start := time.Now()
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.sink.Write(ctx, event)
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		g.metrics.RecordSinkWrite(g.sink.Name(), true, elapsed)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.RecordSinkSkipped(g.sink.Name())
		log.Debug("circuit open, event dropped")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		g.metrics.RecordSinkWrite(g.sink.Name(), false, elapsed)
		log.Warn("sink write timed out", "timeout", g.timeout.String())
	default:
		g.metrics.RecordSinkWrite(g.sink.Name(), false, elapsed)
		log.Error("sink write failed", "error", err)
	}
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}
