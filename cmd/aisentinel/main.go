// Command aisentinel runs the AIS ingestion, anomaly-detection, and
// broadcast pipeline: a signal.NotifyContext-driven main loop wiring the
// ingestion loop, the single dispatcher goroutine, and the HTTP server
// together, shutting each down in turn on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aisentinel/aisentinel/config"
	"github.com/aisentinel/aisentinel/decode"
	"github.com/aisentinel/aisentinel/dispatch"
	"github.com/aisentinel/aisentinel/httpapi"
	"github.com/aisentinel/aisentinel/hub"
	"github.com/aisentinel/aisentinel/ingest"
	"github.com/aisentinel/aisentinel/logger"
	"github.com/aisentinel/aisentinel/metrics"
	"github.com/aisentinel/aisentinel/vessel"
)

// queueCapacity bounds the producer-to-dispatcher queue; a full queue
// applies backpressure to injection handlers and is reported via
// metrics.QueueDepth.
const queueCapacity = 4096

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "aisentinel:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	periodic := logger.NewPeriodic(log)
	defer periodic.Close()

	store := vessel.NewStore()
	broadcastHub := hub.New(log)
	queue := make(chan []byte, queueCapacity)

	periodic.Add("queue", 30*time.Second, 5*time.Minute, func(l *slog.Logger, _ time.Duration) {
		l.Info("pipeline stats", "queue_depth", len(queue), "subscribers", broadcastHub.Count())
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go ingest.Loop(ctx, log, cfg, decode.FilterMessageTypes, queue)

	d := dispatch.New(log, store, broadcastHub)
	dispatchDone := make(chan struct{})
	go func() {
		d.Run(ctx, queue)
		close(dispatchDone)
	}()

	api := httpapi.New(log, store, broadcastHub, queue)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Routes()}
	go func() {
		log.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", "error", err)
	}

	select {
	case <-dispatchDone:
	case <-time.After(5 * time.Second):
		log.Warn("dispatcher did not drain in time")
	}

	metrics.QueueDepth.Set(float64(len(queue)))
}
