package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	upiclient "github.com/GregMSThompson/atm-backend/internal/client/upi"
	"github.com/GregMSThompson/atm-backend/internal/countdown"
	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/handlers"
	"github.com/GregMSThompson/atm-backend/internal/metrics"
	"github.com/GregMSThompson/atm-backend/internal/mockdata"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/response"
	"github.com/GregMSThompson/atm-backend/internal/services"
	"github.com/GregMSThompson/atm-backend/internal/state"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

var routerNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type testApp struct {
	server *httptest.Server
	state  *state.State
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	clock := func() time.Time { return routerNow }
	log := slog.New(logger.NewTestHandler(slog.LevelDebug))

	gen := mockdata.New(7, clock, time.UTC)
	collector := metrics.NewCollector("atm")
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		t.Fatalf("register metrics: %v", err)
	}

	st := state.New(gen.Dataset(), state.Options{
		Now:       clock,
		Slots:     gen,
		Verifier:  upiclient.NewAdapter(0),
		Recorders: []state.Recorder{collector},
	})
	scheduler := countdown.New(time.Hour, clock, time.UTC, func(ctx context.Context, id string) error {
		_, err := st.ExpireBooking(ctx, id)
		return err
	})
	t.Cleanup(scheduler.Close)

	deps := &handlers.Deps{
		Log:              log,
		ResponseHandler:  response.New(log),
		HomeSvc:          services.NewHomeService(st, clock),
		LocatorSvc:       services.NewLocatorService(st),
		SlotBookingSvc:   services.NewSlotBookingService(st, 4*time.Hour, time.UTC, clock),
		BookingsSvc:      services.NewBookingsService(st, scheduler, time.UTC, clock),
		WithdrawalSvc:    services.NewWithdrawalService(st, clock),
		TransactionsSvc:  services.NewTransactionsService(st),
		NotificationsSvc: services.NewNotificationsService(st),
	}

	r := NewRouter(deps, Options{
		DemoUID:        mockdata.DemoUserID,
		Metrics:        collector.Middleware,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, state: st}
}

func (a *testApp) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	return res.StatusCode, raw
}

func decodeData(t *testing.T, raw []byte, v any) {
	t.Helper()
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, raw)
	}
	if !envelope.Success {
		t.Fatalf("expected success envelope, got %s", raw)
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	status, raw := app.do(t, http.MethodGet, "/health", "")
	if status != http.StatusOK || !strings.Contains(string(raw), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", status, raw)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	if status, _ := app.do(t, http.MethodGet, "/nope", ""); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestLocatorFilter(t *testing.T) {
	app := newTestApp(t)
	status, raw := app.do(t, http.MethodGet, "/atm-locator?status=Working", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, raw)
	}
	var resp dto.LocatorResponse
	decodeData(t, raw, &resp)
	if len(resp.ATMs) != 3 {
		t.Fatalf("expected 3 working ATMs, got %d", len(resp.ATMs))
	}
	for _, atm := range resp.ATMs {
		if atm.Status != models.ATMWorking {
			t.Errorf("unexpected status %q", atm.Status)
		}
	}

	status, _ = app.do(t, http.MethodGet, "/atm-locator?status=Broken", "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", status)
	}
}

func TestBookConfirmCancelFlow(t *testing.T) {
	app := newTestApp(t)

	atm, err := app.state.ATM("atm1")
	if err != nil {
		t.Fatalf("atm1: %v", err)
	}
	tomorrow := routerNow.AddDate(0, 0, 1).Format(models.SlotDateLayout)
	var slot models.TimeSlot
	for _, s := range atm.AvailableSlots {
		if s.Date == tomorrow && !s.IsBooked {
			slot = s
			break
		}
	}
	if slot.ID == "" {
		t.Fatal("no free slot tomorrow")
	}

	status, raw := app.do(t, http.MethodPost, "/slot-booking", `{"atmId":"atm1","slotId":"`+slot.ID+`"}`)
	if status != http.StatusCreated {
		t.Fatalf("book status = %d: %s", status, raw)
	}
	var booking models.BookedSlot
	decodeData(t, raw, &booking)
	if booking.BookingID == "" || booking.ID != slot.ID {
		t.Fatalf("unexpected booking %+v", booking)
	}

	status, raw = app.do(t, http.MethodPost, "/slot-booking", `{"atmId":"atm1","slotId":"`+slot.ID+`"}`)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on double booking, got %d: %s", status, raw)
	}

	status, raw = app.do(t, http.MethodPost, "/my-bookings/"+booking.BookingID+"/confirm", "")
	if status != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", status, raw)
	}

	status, raw = app.do(t, http.MethodGet, "/my-bookings/"+booking.BookingID+"/countdown", "")
	if status != http.StatusOK {
		t.Fatalf("countdown status = %d: %s", status, raw)
	}
	var cd dto.CountdownResponse
	decodeData(t, raw, &cd)
	if !cd.Watching || cd.RemainingSeconds <= 0 {
		t.Fatalf("unexpected countdown %+v", cd)
	}

	status, raw = app.do(t, http.MethodDelete, "/my-bookings/"+booking.BookingID, "")
	if status != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", status, raw)
	}

	status, raw = app.do(t, http.MethodGet, "/my-bookings", "")
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var views []dto.BookingView
	decodeData(t, raw, &views)
	for _, v := range views {
		if v.BookingID == booking.BookingID {
			t.Fatal("cancelled booking still listed")
		}
	}

	after, _ := app.state.ATM("atm1")
	if s, _ := after.Slot(slot.ID); s.IsBooked {
		t.Fatal("slot should be released after cancel")
	}
}

func TestCardlessWithdrawalFlow(t *testing.T) {
	app := newTestApp(t)

	status, raw := app.do(t, http.MethodPost, "/cardless-withdrawal/qr", `{"atmId":"atm1","amount":500}`)
	if status != http.StatusCreated {
		t.Fatalf("qr status = %d: %s", status, raw)
	}
	var session dto.WithdrawalSession
	decodeData(t, raw, &session)
	if session.Step != dto.StepVerify || !strings.HasPrefix(session.QRCode, "UPI://pay?") {
		t.Fatalf("unexpected session %+v", session)
	}

	status, raw = app.do(t, http.MethodPost, "/cardless-withdrawal/verify", `{"sessionId":"`+session.ID+`","otp":"123456"}`)
	if status != http.StatusOK {
		t.Fatalf("verify status = %d: %s", status, raw)
	}
	decodeData(t, raw, &session)
	if session.Step != dto.StepDone || session.Receipt == nil || session.Receipt.Status != models.TxCompleted {
		t.Fatalf("unexpected verified session %+v", session)
	}

	status, raw = app.do(t, http.MethodGet, "/transactions?type=Withdrawal", "")
	if status != http.StatusOK {
		t.Fatalf("transactions status = %d", status)
	}
	var txs dto.TransactionsResponse
	decodeData(t, raw, &txs)
	if len(txs.Transactions) == 0 || txs.Transactions[0].ID != session.Receipt.ID {
		t.Fatalf("new withdrawal should be listed first, got %+v", txs.Transactions)
	}
	if txs.Transactions[0].DisplayAmount != "-$500.00" {
		t.Fatalf("display amount = %q", txs.Transactions[0].DisplayAmount)
	}

	status, raw = app.do(t, http.MethodGet, "/metrics", "")
	if status != http.StatusOK {
		t.Fatalf("metrics status = %d", status)
	}
	if !strings.Contains(string(raw), `atm_transactions_total{method="UPI",status="Completed",type="Withdrawal"} 1`) {
		t.Fatalf("transaction counter missing from metrics output")
	}
	if !strings.Contains(string(raw), `route="/cardless-withdrawal/verify"`) {
		t.Fatalf("route pattern label missing from metrics output")
	}
}

func TestNotificationsDismiss(t *testing.T) {
	app := newTestApp(t)

	status, raw := app.do(t, http.MethodGet, "/notifications", "")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var before []string
	decodeData(t, raw, &before)

	if status, _ := app.do(t, http.MethodDelete, "/notifications/0", ""); status != http.StatusNoContent {
		t.Fatalf("dismiss status = %d", status)
	}
	if status, _ := app.do(t, http.MethodDelete, "/notifications/99", ""); status != http.StatusNotFound {
		t.Fatalf("expected 404 for out of range index, got %d", status)
	}
	if got := app.state.Notifications(); len(got) != len(before)-1 {
		t.Fatalf("expected %d notifications, got %d", len(before)-1, len(got))
	}
}
