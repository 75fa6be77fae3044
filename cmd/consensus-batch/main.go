// Command consensus-batch recomputes per-vehicle review consensus records.
//
// The batch fetches completed review records for each vehicle, aggregates
// them into weighted category statistics, tag rankings, bounded rating
// adjustments, and a templated summary, and upserts one consensus record per
// vehicle. Failures are isolated per vehicle; the process exits non-zero
// only on fatal configuration errors.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/revline/consensus/infrastructure/middleware"
	"github.com/revline/consensus/infrastructure/storage"
	"github.com/revline/consensus/internal/application"
	"github.com/revline/consensus/internal/ports"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to the batch YAML configuration file")
		vehicleID  = flag.String("vehicle", "", "Process only this vehicle instead of all known vehicles")
		dryRun     = flag.Bool("dry-run", false, "Compute everything but skip the upsert")
		verbose    = flag.Bool("verbose", false, "Log per-vehicle category statistics and adjustments")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "consensus-batch: ", log.LstdFlags)

	cfg, err := application.LoadBatchConfig(*configPath)
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}
	if cfg.Storage.DSN == "" {
		// Fail fast before any vehicle is processed. Dry-run still needs the
		// DSN because the review source reads from the same database.
		logger.Fatal("configuration: storage.dsn is required")
	}

	db, err := storage.Open(cfg.Storage.DSN)
	if err != nil {
		logger.Fatalf("storage: %v", err)
	}

	initialWait := time.Duration(cfg.Retry.InitialWait) * time.Millisecond
	maxWait := time.Duration(cfg.Retry.MaxWait) * time.Millisecond

	var sourceMiddlewares []middleware.SourceMiddleware
	if cfg.RateLimit.RequestsPerSecond > 0 {
		sourceMiddlewares = append(sourceMiddlewares,
			middleware.RateLimitSource(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst))
	}
	sourceMiddlewares = append(sourceMiddlewares,
		middleware.RetrySource(cfg.Retry.MaxAttempts, initialWait, maxWait))
	if cfg.Timeouts.FetchSeconds > 0 {
		sourceMiddlewares = append(sourceMiddlewares, middleware.TimeoutSource(cfg.Timeouts.FetchTimeout()))
	}
	sourceMiddlewares = append(sourceMiddlewares, middleware.TraceSource())

	source := middleware.ChainSource(storage.NewGormReviewSource(db), sourceMiddlewares...)

	var store ports.ConsensusStore
	if !*dryRun {
		storeMiddlewares := []middleware.StoreMiddleware{
			middleware.RetryStore(cfg.Retry.MaxAttempts, initialWait, maxWait),
		}
		if cfg.Timeouts.PersistSeconds > 0 {
			storeMiddlewares = append(storeMiddlewares, middleware.TimeoutStore(cfg.Timeouts.PersistTimeout()))
		}
		storeMiddlewares = append(storeMiddlewares, middleware.TraceStore())

		store = middleware.ChainStore(storage.NewGormConsensusStore(db), storeMiddlewares...)
	}

	metrics := middleware.NewPrometheusMetrics(nil)

	builder, err := application.NewBuilder(cfg.Aggregation, source)
	if err != nil {
		logger.Fatalf("builder: %v", err)
	}

	driver, err := application.NewDriver(builder, source, store, metrics, logger, application.BatchOptions{
		DryRun:  *dryRun,
		Verbose: *verbose,
	})
	if err != nil {
		logger.Fatalf("driver: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var vehicles []string
	if *vehicleID != "" {
		vehicles = []string{*vehicleID}
	}

	stats, runErr := driver.Run(ctx, vehicles)
	cancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("%v", err)
	}

	fmt.Printf("processed=%d updated=%d skipped_no_reviews=%d errors=%d\n",
		stats.Processed, stats.Updated, stats.SkippedNoReviews, stats.Errors)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Printf("run: %v", runErr)
	}
}
