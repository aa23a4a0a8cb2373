package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/config"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/logger"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/ratelimit"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/service"
)

// WatchServiceHandle wraps the watch service so pending progress is
// flushed before the store shuts down.
type WatchServiceHandle struct {
	*service.WatchService
}

// Shutdown implements do.Shutdownable.
func (h *WatchServiceHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	h.Flush(ctx)
	return nil
}

// ProvideWatchService provides the watch tracking service with its
// debounced saver.
func ProvideWatchService(i do.Injector) (*WatchServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	saver := service.NewSaver(storeHandle.Store, log.Logger, cfg.Tracker.SaveDebounce)
	watchService := service.NewWatchService(storeHandle.Store, saver, log.Logger)

	log.Info("Watch service ready", "save_debounce", cfg.Tracker.SaveDebounce)

	return &WatchServiceHandle{WatchService: watchService}, nil
}

// RateLimiterHandle wraps the per-user limiter with shutdown.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-user event ingestion limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &RateLimiterHandle{
		KeyedRateLimiter: ratelimit.New(cfg.RateLimit.EventsPerSecond, cfg.RateLimit.Burst),
	}, nil
}
