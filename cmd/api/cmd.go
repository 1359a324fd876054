package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GregMSThompson/atm-backend/internal/bootstrap"
	upiclient "github.com/GregMSThompson/atm-backend/internal/client/upi"
	"github.com/GregMSThompson/atm-backend/internal/config"
	"github.com/GregMSThompson/atm-backend/internal/countdown"
	"github.com/GregMSThompson/atm-backend/internal/handlers"
	"github.com/GregMSThompson/atm-backend/internal/mockdata"
	"github.com/GregMSThompson/atm-backend/internal/response"
	"github.com/GregMSThompson/atm-backend/internal/router"
	"github.com/GregMSThompson/atm-backend/internal/services"
	"github.com/GregMSThompson/atm-backend/internal/state"
)

const shutdownTimeout = 10 * time.Second

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	clock := time.Now

	// mock data
	gen := mockdata.New(cfg.MockSeed, clock, cfg.Location)
	st := state.New(gen.Dataset(), state.Options{
		Now:       clock,
		Slots:     gen,
		Verifier:  upiclient.NewAdapter(cfg.OTPDelay),
		Recorders: bs.Recorders(),
	})

	// countdown
	scheduler := countdown.New(cfg.CountdownTick, clock, cfg.Location, func(ctx context.Context, bookingID string) error {
		_, err := st.ExpireBooking(ctx, bookingID)
		return err
	})
	defer scheduler.Close()

	// services
	homeSvc := services.NewHomeService(st, clock)
	locatorSvc := services.NewLocatorService(st)
	slotSvc := services.NewSlotBookingService(st, cfg.SlotWindow, cfg.Location, clock)
	bookingsSvc := services.NewBookingsService(st, scheduler, cfg.Location, clock)
	withdrawalSvc := services.NewWithdrawalService(st, clock)
	txSvc := services.NewTransactionsService(st)
	notifSvc := services.NewNotificationsService(st)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.HomeSvc = homeSvc
	deps.LocatorSvc = locatorSvc
	deps.SlotBookingSvc = slotSvc
	deps.BookingsSvc = bookingsSvc
	deps.WithdrawalSvc = withdrawalSvc
	deps.TransactionsSvc = txSvc
	deps.NotificationsSvc = notifSvc

	// router
	r := router.NewRouter(deps, router.Options{
		DemoUID:        cfg.DemoUserID,
		Metrics:        bs.Metrics.Middleware,
		MetricsHandler: promhttp.HandlerFor(bs.Registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		bs.Log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			bs.Log.Error("server start failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	bs.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("graceful shutdown failed", "error", err)
	}
}
