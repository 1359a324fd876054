// Package countdown watches confirmed bookings and expires each one once
// its slot time has arrived.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

var ErrClosed = errors.New("countdown: scheduler closed")

// ExpireFunc is called once when a watched booking's slot time is reached.
type ExpireFunc func(ctx context.Context, bookingID string) error

type Scheduler struct {
	tick   time.Duration
	now    func() time.Time
	loc    *time.Location
	expire ExpireFunc

	mu      sync.Mutex
	watches map[string]*watch
	closed  bool
}

type watch struct {
	cancel    context.CancelFunc
	done      chan struct{}
	remaining atomic.Int64
}

func New(tick time.Duration, now func() time.Time, loc *time.Location, expire ExpireFunc) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		tick:    tick,
		now:     now,
		loc:     loc,
		expire:  expire,
		watches: make(map[string]*watch),
	}
}

// Watch starts the countdown for booking, replacing any running watch for
// the same booking id. The first check runs straight away, so a slot
// already in the past expires without waiting for a tick.
func (s *Scheduler) Watch(ctx context.Context, booking models.BookedSlot) error {
	start, err := booking.Start(s.loc)
	if err != nil {
		return fmt.Errorf("countdown: booking %s: %w", booking.BookingID, err)
	}

	wctx, cancel := context.WithCancel(logger.Detach(ctx))
	w := &watch{cancel: cancel, done: make(chan struct{})}
	w.remaining.Store(int64(start.Sub(s.now())))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return ErrClosed
	}
	prev := s.watches[booking.BookingID]
	s.watches[booking.BookingID] = w
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
	go s.run(wctx, w, booking.BookingID, start)
	return nil
}

// Stop ends the watch for bookingID and waits for its goroutine to exit.
// It reports whether a watch was running.
func (s *Scheduler) Stop(bookingID string) bool {
	s.mu.Lock()
	w, ok := s.watches[bookingID]
	delete(s.watches, bookingID)
	s.mu.Unlock()

	if !ok {
		return false
	}
	w.stop()
	return true
}

// Remaining returns the time left on a running watch.
func (s *Scheduler) Remaining(bookingID string) (time.Duration, bool) {
	s.mu.Lock()
	w, ok := s.watches[bookingID]
	s.mu.Unlock()
	if !ok {
		return 0, false
	}
	return time.Duration(w.remaining.Load()), true
}

// Close stops every watch. Watch fails with ErrClosed afterwards.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	watches := s.watches
	s.watches = make(map[string]*watch)
	s.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
}

func (s *Scheduler) run(ctx context.Context, w *watch, bookingID string, start time.Time) {
	defer close(w.done)
	defer s.forget(bookingID, w)

	log := logger.FromContext(ctx).With("booking_id", bookingID)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		remaining := start.Sub(s.now())
		if remaining <= 0 {
			w.remaining.Store(0)
			if err := s.expire(ctx, bookingID); err != nil {
				log.Warn("booking expiry failed", "error", err)
				return
			}
			log.Info("booking expired")
			return
		}
		w.remaining.Store(int64(remaining))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) forget(bookingID string, w *watch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watches[bookingID] == w {
		delete(s.watches, bookingID)
	}
}

func (w *watch) stop() {
	w.cancel()
	<-w.done
}

// FormatRemaining renders d as "1h 5m 3s", or "5m 3s" under an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
