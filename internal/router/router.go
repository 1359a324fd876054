package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/atm-backend/internal/handlers"
	"github.com/GregMSThompson/atm-backend/internal/middleware"
)

type Options struct {
	DemoUID string
	// Metrics instruments every request. Optional.
	Metrics func(http.Handler) http.Handler
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(deps *handlers.Deps, opts Options) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		deps.ResponseHandler.WriteSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	hh := handlers.NewHomeHandlers(deps)
	lh := handlers.NewLocatorHandlers(deps)
	sbh := handlers.NewSlotBookingHandlers(deps)
	bh := handlers.NewBookingsHandlers(deps)
	wh := handlers.NewWithdrawalHandlers(deps)
	th := handlers.NewTransactionsHandlers(deps)
	nh := handlers.NewNotificationsHandlers(deps)

	r.Group(func(r chi.Router) {
		r.Use(middleware.DemoUser(opts.DemoUID))

		r.Get("/", hh.GetHome)
		r.Mount("/atm-locator", lh.LocatorRoutes())
		r.Mount("/slot-booking", sbh.SlotBookingRoutes())
		r.Mount("/my-bookings", bh.BookingsRoutes())
		r.Mount("/cardless-withdrawal", wh.WithdrawalRoutes())
		r.Mount("/transactions", th.TransactionsRoutes())
		r.Mount("/notifications", nh.NotificationsRoutes())
	})

	return r
}
