package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"rainbow/internal/api"
	"rainbow/internal/config"
	"rainbow/internal/logging"
	"rainbow/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	dbPath := flag.String("sqlite", config.DBPath(), "Path to the SQLite table file")
	addr := flag.String("http-addr", config.HTTPAddr(), "Address to listen on")
	maxConns := flag.Int("max-conns", config.DefaultMaxConns, "Maximum open store connections")
	cacheSize := flag.Int("cache-size", config.DefaultCacheSize, "Resolved digests kept in memory (0 disables)")
	maxBatch := flag.Int("max-batch", config.DefaultMaxBatch, "Maximum digests per request (0 for no limit)")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := logging.New(level)

	// Initialize database
	logger.Info("connecting to database", "path", *dbPath)
	opts := store.DefaultOptions()
	opts.ReadOnly = true
	opts.MaxOpenConns = *maxConns
	opts.MaxIdleConns = *maxConns
	db, err := store.Open(*dbPath, opts)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if has, err := store.HasLookupIndex(context.Background(), db); err != nil {
		log.Fatalf("Failed to inspect database: %v", err)
	} else if !has {
		logger.Warn("digest index is missing, lookups will scan the table; run the db tool with -reindex")
	}

	resolver, err := api.NewResolver(db, *cacheSize)
	if err != nil {
		log.Fatalf("Failed to create resolver: %v", err)
	}
	server := api.NewServer(resolver, *maxBatch, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		store.NewPoolCollector(db),
	)
	if err := api.RegisterMetrics(reg); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	s := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(server, reg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("starting server", "addr", *addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// newRouter mounts the metrics endpoint and the generated API routes on one mux.
func newRouter(server api.ServerInterface, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return api.HandlerFromMux(server, mux)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start))
		})
	}
}
