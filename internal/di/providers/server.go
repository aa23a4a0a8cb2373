package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/api"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/auth"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/config"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/logger"
	"github.com/LakshmiPriyank/Progress-Tracker-Application/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	watchHandle := do.MustInvoke[*WatchServiceHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	apiServer := api.NewServer(
		storeHandle.Store,
		watchHandle.WatchService,
		tokenService,
		sseHandler,
		limiterHandle.KeyedRateLimiter,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening",
			"name", cfg.Server.Name,
			"addr", srv.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(fmt.Sprintf("HTTP server failed: %v", err))
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
