// Package metrics exposes Prometheus collectors for the domain events, the
// HTTP layer and the outbound sinks.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GregMSThompson/atm-backend/internal/models"
)

// CircuitState mirrors the breaker states as gauge values.
type CircuitState int

const (
	CircuitClosed   CircuitState = 0
	CircuitOpen     CircuitState = 1
	CircuitHalfOpen CircuitState = 2
)

type Collector struct {
	atmsAdded      prometheus.Counter
	bookings       *prometheus.CounterVec
	transactions   *prometheus.CounterVec
	withdrawn      prometheus.Counter
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	sinkWrites     *prometheus.CounterVec
	sinkLatency    *prometheus.HistogramVec
	circuitState   *prometheus.GaugeVec
}

func NewCollector(namespace string) *Collector {
	return &Collector{
		atmsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "atms_added_total",
			Help:      "Total number of ATMs registered at runtime",
		}),
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_events_total",
				Help:      "Total number of booking lifecycle events",
			},
			[]string{"event"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_total",
				Help:      "Total number of recorded transactions",
			},
			[]string{"type", "method", "status"},
		),
		withdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawn_amount_total",
			Help:      "Sum of completed withdrawal amounts",
		}),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests per route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency per route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		sinkWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sink_writes_total",
				Help:      "Total number of sink writes per sink and result",
			},
			[]string{"sink", "result"},
		),
		sinkLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sink_write_duration_seconds",
				Help:      "Sink write latency",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"sink"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sink_circuit_state",
				Help:      "Circuit breaker state per sink (0=closed, 1=open, 2=half-open)",
			},
			[]string{"sink"},
		),
	}
}

// Register registers all collectors with registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.atmsAdded, c.bookings, c.transactions, c.withdrawn,
		c.requests, c.requestLatency,
		c.sinkWrites, c.sinkLatency, c.circuitState,
	} {
		if err := registry.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// --- Domain events ---

func (c *Collector) ATMAdded(_ context.Context, _ models.ATM) {
	c.atmsAdded.Inc()
}

func (c *Collector) SlotBooked(_ context.Context, _ models.BookedSlot) {
	c.bookings.WithLabelValues("booked").Inc()
}

func (c *Collector) BookingConfirmed(_ context.Context, _ models.BookedSlot) {
	c.bookings.WithLabelValues("confirmed").Inc()
}

func (c *Collector) BookingCancelled(_ context.Context, _ models.BookedSlot, reason string) {
	c.bookings.WithLabelValues(reason).Inc()
}

func (c *Collector) TransactionAdded(_ context.Context, tx models.Transaction) {
	c.transactions.WithLabelValues(string(tx.Type), string(tx.Method), string(tx.Status)).Inc()
	if tx.Type == models.TxWithdrawal && tx.Status == models.TxCompleted {
		c.withdrawn.Add(tx.Amount)
	}
}

// --- Sinks ---

func (c *Collector) RecordSinkWrite(sink string, ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	c.sinkWrites.WithLabelValues(sink, result).Inc()
	c.sinkLatency.WithLabelValues(sink).Observe(d.Seconds())
}

func (c *Collector) RecordSinkSkipped(sink string) {
	c.sinkWrites.WithLabelValues(sink, "skipped").Inc()
}

func (c *Collector) RecordCircuitState(sink string, state CircuitState) {
	c.circuitState.WithLabelValues(sink).Set(float64(state))
}

// --- HTTP ---

// Middleware counts requests by their chi route pattern, so path
// parameters do not explode the label space.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.requestLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
