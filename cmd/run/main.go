package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencatalog/repo-scanner/api"
	"github.com/opencatalog/repo-scanner/internal/ui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalogApi := api.NewCatalogAPI()
	if err := catalogApi.Initialize(ctx); err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	logger := catalogApi.Logger()
	logger.Info(ctx, "Starting repository catalog scanner")

	// Periodic scans: first one fires immediately, the server below becomes
	// ready while it runs.
	if err := catalogApi.StartScheduler(ctx); err != nil {
		logger.Error(ctx, "Failed to start scheduler: %v", err)
		os.Exit(1)
	}

	server, err := ui.NewServer(logger, catalogApi.Config(), catalogApi.Mysql(), catalogApi.Scanner(), catalogApi.Scheduler(), 8080)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Error(ctx, "Server error: %v", err)
		}
	}()

	// Graceful shutdown: stop future scans, drain the server. An in-flight
	// scan is allowed to finish.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info(ctx, "Received shutdown signal")
	catalogApi.StopScheduler()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error: %v", err)
	}

	if err := catalogApi.Mysql().Close(); err != nil {
		logger.Error(ctx, "Database close error: %v", err)
	}
}
