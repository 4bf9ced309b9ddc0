// Command helmkernel serves the surrogate water property kernel over HTTP so
// property networks in other processes can evaluate against it. Invocation
// counts, errors, and latency are exported as Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fluid-props/helmholtz/kernel"
	"github.com/fluid-props/helmholtz/kernel/mock"
	"github.com/fluid-props/helmholtz/kernel/remote"
)

type metrics struct {
	invocations *prometheus.CounterVec
	failures    prometheus.Counter
	latency     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		invocations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "helmkernel_invocations_total",
			Help: "Property function invocations by function name.",
		}, []string{"function"}),
		failures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "helmkernel_errors_total",
			Help: "Failed property function invocations.",
		}),
		latency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "helmkernel_invoke_duration_seconds",
			Help:    "Property function invocation latency.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 10, 8),
		}),
	}
}

// measuredKernel wraps an Invoker with metrics and debug logging.
type measuredKernel struct {
	inner   kernel.Invoker
	metrics *metrics
	logger  *slog.Logger
}

func (m *measuredKernel) Invoke(ctx context.Context, fn kernel.Func, args ...float64) (float64, error) {
	start := time.Now()
	v, err := m.inner.Invoke(ctx, fn, args...)
	m.metrics.latency.Observe(time.Since(start).Seconds())
	m.metrics.invocations.WithLabelValues(string(fn)).Inc()
	if err != nil {
		m.metrics.failures.Inc()
		m.logger.Debug("invocation failed", "function", fn, "error", err)
		return 0, err
	}
	m.logger.Debug("invoked", "function", fn, "args", args, "value", v)
	return v, nil
}

func main() {
	var (
		addr    = flag.String("addr", ":8080", "Listen address for the kernel service")
		verbose = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry := kernel.NewRegistry()
	surrogate := mock.NewFluid()
	if err := surrogate.Install(registry); err != nil {
		log.Fatalf("Failed to install surrogate kernel: %v", err)
	}

	promReg := prometheus.NewRegistry()
	measured := &measuredKernel{
		inner:   registry,
		metrics: newMetrics(promReg),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.Handle(remote.NewHandler(measured))
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !registry.Available() {
			http.Error(w, "kernel incomplete", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("serving property kernel",
		"addr", *addr,
		"fluid", surrogate.Definition().Name,
		"functions", len(registry.Funcs()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("stopped")
}
