package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/GregMSThompson/atm-backend/internal/models"
)

func TestRegister(t *testing.T) {
	c := NewCollector("atm")
	reg := prometheus.NewRegistry()

	if err := c.Register(reg); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestDomainCounters(t *testing.T) {
	c := NewCollector("atm")
	ctx := context.Background()

	c.ATMAdded(ctx, models.ATM{})
	c.SlotBooked(ctx, models.BookedSlot{})
	c.SlotBooked(ctx, models.BookedSlot{})
	c.BookingConfirmed(ctx, models.BookedSlot{})
	c.BookingCancelled(ctx, models.BookedSlot{}, "expired")
	c.TransactionAdded(ctx, models.Transaction{Type: models.TxWithdrawal, Method: models.MethodUPI, Status: models.TxCompleted, Amount: 500})
	c.TransactionAdded(ctx, models.Transaction{Type: models.TxWithdrawal, Method: models.MethodUPI, Status: models.TxFailed, Amount: 300})

	if got := testutil.ToFloat64(c.atmsAdded); got != 1 {
		t.Errorf("atms added = %v", got)
	}
	if got := testutil.ToFloat64(c.bookings.WithLabelValues("booked")); got != 2 {
		t.Errorf("booked = %v", got)
	}
	if got := testutil.ToFloat64(c.bookings.WithLabelValues("expired")); got != 1 {
		t.Errorf("expired = %v", got)
	}
	if got := testutil.ToFloat64(c.transactions.WithLabelValues("Withdrawal", "UPI", "Failed")); got != 1 {
		t.Errorf("failed withdrawals = %v", got)
	}
	if got := testutil.ToFloat64(c.withdrawn); got != 500 {
		t.Errorf("withdrawn = %v", got)
	}
}

func TestSinkMetrics(t *testing.T) {
	c := NewCollector("atm")

	c.RecordSinkWrite("redis", true, 10*time.Millisecond)
	c.RecordSinkWrite("redis", false, time.Second)
	c.RecordSinkSkipped("redis")
	c.RecordCircuitState("redis", CircuitOpen)

	if got := testutil.ToFloat64(c.sinkWrites.WithLabelValues("redis", "error")); got != 1 {
		t.Errorf("errors = %v", got)
	}
	if got := testutil.ToFloat64(c.sinkWrites.WithLabelValues("redis", "skipped")); got != 1 {
		t.Errorf("skipped = %v", got)
	}
	if got := testutil.ToFloat64(c.circuitState.WithLabelValues("redis")); got != 1 {
		t.Errorf("circuit state = %v", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	c := NewCollector("atm")
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/my-bookings/{bookingId}/countdown", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"b1", "b2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/my-bookings/"+id+"/countdown", nil))
	}

	got := testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/my-bookings/{bookingId}/countdown", "404"))
	if got != 2 {
		t.Fatalf("requests = %v", got)
	}
}
