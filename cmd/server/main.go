package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/gophdraw/internal/config"
	"github.com/iudanet/gophdraw/internal/conflict"
	"github.com/iudanet/gophdraw/internal/metrics"
	"github.com/iudanet/gophdraw/internal/server"
	"github.com/iudanet/gophdraw/internal/server/middleware"
	"github.com/iudanet/gophdraw/internal/storage"
	"github.com/iudanet/gophdraw/internal/storage/boltdb"
	"github.com/iudanet/gophdraw/internal/storage/sqlite"
	"github.com/iudanet/gophdraw/internal/vcs"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(reg)

	conflictCfg, err := cfg.ConflictConfig()
	if err != nil {
		return err
	}
	opts := []vcs.Option{
		vcs.WithLogger(logger),
		vcs.WithMetrics(collector),
		vcs.WithMaxTraversal(cfg.VCS.MaxTraversal),
		vcs.WithConflictManager(conflict.NewManager(conflictCfg, logger, collector)),
	}

	repo, err := openRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var vc *vcs.VersionControl
	if repo == nil {
		logger.Warn("Using in-memory storage, history is lost on exit")
		vc = vcs.New(opts...)
	} else {
		defer func() {
			if err := repo.Close(); err != nil {
				logger.Error("Failed to close storage", "error", err)
			}
		}()
		vc, err = vcs.Restore(ctx, repo, append(opts, vcs.WithSink(repo))...)
		if err != nil {
			return fmt.Errorf("failed to restore version graph: %w", err)
		}
	}

	logger.Info("GophDraw server starting",
		"version", Version,
		"storage", cfg.Storage.Driver,
		"addr", cfg.Server.Addr)

	routerOpts := server.RouterOptions{
		Collector: collector,
		Gatherer:  reg,
		Version:   Version,
	}
	if cfg.Server.WriteRate > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.WriteRate, cfg.Server.WriteWindow)
		go limiter.Run(ctx)
		routerOpts.WriteLimiter = limiter
	}

	return server.Run(ctx, logger, cfg.Server.Addr, server.NewRouter(logger, vc, routerOpts))
}

// openRepository открывает хранилище по драйверу; для memory возвращает nil.
func openRepository(ctx context.Context, cfg config.StorageConfig) (storage.Repository, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return s, nil
	case config.DriverBolt:
		s, err := boltdb.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb storage: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnknownDriver, cfg.Driver)
	}
}

func printVersion() {
	fmt.Printf("GophDraw Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
