package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"collectrip/models"
	"collectrip/services"
)

// BadgeWorker periodically sweeps recent check-ins and awards any badge whose
// condition is now met. The inline award after a check-in covers the common
// case; the sweep covers failures and condition changes.
type BadgeWorker struct {
	badges    *services.BadgeService
	triggerCh chan struct{}
	logFunc   LogFunc
	lastSweep time.Time
}

func NewBadgeWorker(badges *services.BadgeService) *BadgeWorker {
	return &BadgeWorker{
		badges:    badges,
		triggerCh: make(chan struct{}, 1),
		logFunc:   NoOpLogger,
	}
}

func (w *BadgeWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *BadgeWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the badge worker loop
func (w *BadgeWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Cover anything that happened before this process started.
	w.lastSweep = time.Now().Add(-interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Badge worker stopping")
			return
		case <-ticker.C:
			w.sweep(ctx)
		case <-w.triggerCh:
			w.sweep(ctx)
		}
	}
}

func (w *BadgeWorker) sweep(ctx context.Context) {
	since := w.lastSweep
	start := time.Now()

	if err := w.badges.EvaluateRecent(ctx, since); err != nil {
		log.Printf("Badge worker: sweep error: %v", err)
		w.logFunc(models.LogLevelError, "badges", fmt.Sprintf("sweep failed: %v", err))
		return
	}

	w.lastSweep = start
}
