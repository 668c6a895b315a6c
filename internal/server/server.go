// Package server собирает HTTP API графа версий: маршруты, middleware и /metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/server/handlers"
	"github.com/iudanet/gophdraw/internal/server/middleware"
	"github.com/iudanet/gophdraw/internal/vcs"
)

const shutdownTimeout = 10 * time.Second

// RouterOptions - необязательные зависимости роутера.
type RouterOptions struct {
	// Collector учитывает HTTP запросы, может быть nil
	Collector *metrics.Collector
	// Gatherer публикуется на /metrics; nil - /metrics не публикуется
	Gatherer prometheus.Gatherer
	// WriteLimiter ограничивает изменяющие запросы; nil - без лимита
	WriteLimiter *middleware.RateLimiter
	Version      string
}

// NewRouter возвращает http.Handler со всеми маршрутами API.
func NewRouter(logger *slog.Logger, vc *vcs.VersionControl, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	handlers.Register(mux,
		handlers.NewHealthHandler(logger, opts.Version),
		handlers.NewVersionHandler(logger, vc),
		handlers.NewConflictHandler(logger, vc.Conflicts()),
	)
	if opts.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// Цепочка: recovery -> logging -> write limit -> mux
	var handler http.Handler = mux
	if opts.WriteLimiter != nil {
		handler = middleware.WriteLimitMiddleware(opts.WriteLimiter, logger)(handler)
	}
	handler = middleware.LoggingMiddleware(logger, opts.Collector, "/api/v1/health", "/metrics")(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)
	return handler
}

// Run запускает HTTP сервер и останавливает его при отмене ctx.
func Run(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
