package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/azielinski/smog-pipeline/internal/collector"
	"github.com/azielinski/smog-pipeline/internal/config"
	"github.com/azielinski/smog-pipeline/internal/openmeteo"
	"github.com/azielinski/smog-pipeline/internal/scheduler"
)

func main() {
	cfg, err := config.LoadCollector()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := openmeteo.NewClient(httpClient, openmeteo.RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		Wait:        cfg.RetryWait,
		ShortWait:   openmeteo.DefaultShortWait,
	}, nil)

	job := collector.New(client, cfg, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Schedule <= 0 {
		// One-shot batch run.
		if err := job.Run(ctx); err != nil {
			log.Fatalf("collection run failed: %v", err)
		}
		return
	}

	// Scheduled mode: re-run the full collection on the configured interval
	// until the process is terminated.
	sched := scheduler.New(job, cfg.Schedule)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	<-ctx.Done()
	log.Println("collector: shutting down")
}
