package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/reliefdata/sitewatch/internal/pkg/logger"
)

// Refresher periodically reloads the remote source. It is the only
// recurring background task. Reconfiguring it cancels the running loop
// and starts a fresh one; the ticker is never mutated in place. Failed
// ticks are recorded by the pipeline and the loop keeps going.
type Refresher struct {
	service *Service

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRefresher builds a stopped refresher.
func NewRefresher(service *Service) *Refresher {
	return &Refresher{service: service}
}

// Restart stops any running loop and starts a new one with the given
// interval. The parent context bounds the loop's lifetime.
func (r *Refresher) Restart(parent context.Context, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel

	logger.Info("auto-refresh started", "interval", interval)
	go r.run(ctx, interval)
}

// Stop cancels the running loop, if any.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Refresher) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("auto-refresh stopped")
			return
		case <-ticker.C:
			// Errors are already recorded on the pipeline; nothing
			// here may stop the ticker.
			if err := r.service.LoadFromSource(ctx); err != nil {
				logger.Warn("refresh tick failed", "err", err)
			}
		}
	}
}
