package service

import (
	"context"
	"sync"
	"time"

	"gmail-marketplace/internal/core/ports"

	"github.com/rs/zerolog"
)

// Watcher polls pending payment orders against the gateway until they
// reach a terminal state or expire. One goroutine per watched order;
// watching an already-watched order is a no-op.
type Watcher struct {
	reconcile ports.ReconcileService
	interval  time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
	log     zerolog.Logger
}

// NewWatcher creates a payment order watcher.
func NewWatcher(reconcile ports.ReconcileService, interval time.Duration, log zerolog.Logger) *Watcher {
	return &Watcher{
		reconcile: reconcile,
		interval:  interval,
		cancels:   make(map[string]context.CancelFunc),
		log:       log,
	}
}

// Watch starts polling the order. The poller stops when the order
// turns terminal (including expiry), when Stop is called for the
// order, or when ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, orderID string) {
	w.mu.Lock()
	if _, running := w.cancels[orderID]; running {
		w.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	w.cancels[orderID] = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go w.poll(pollCtx, orderID)
}

// Stop halts the poller for one order, if running.
func (w *Watcher) Stop(orderID string) {
	w.mu.Lock()
	cancel, ok := w.cancels[orderID]
	w.mu.Unlock()
	if ok {
		cancel()
	}
}

// Shutdown stops all pollers and waits for them to exit.
func (w *Watcher) Shutdown() {
	w.mu.Lock()
	for _, cancel := range w.cancels {
		cancel()
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// Watching reports whether the order currently has a poller.
func (w *Watcher) Watching(orderID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.cancels[orderID]
	return ok
}

func (w *Watcher) poll(ctx context.Context, orderID string) {
	defer func() {
		w.mu.Lock()
		delete(w.cancels, orderID)
		w.mu.Unlock()
		w.wg.Done()
	}()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			terminal, err := w.reconcile.Reconcile(ctx, orderID)
			if err != nil {
				// Transient gateway errors: keep polling, expiry bounds the loop.
				w.log.Warn().Err(err).Str("order_id", orderID).Msg("Reconcile poll failed")
				continue
			}
			if terminal {
				return
			}
		}
	}
}
