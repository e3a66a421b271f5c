package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/config"
	"github.com/mcasillasm/RFManalisis/internal/generator"
	"github.com/mcasillasm/RFManalisis/internal/logging"
	"github.com/mcasillasm/RFManalisis/internal/rfm"
	"github.com/mcasillasm/RFManalisis/internal/server"
	"github.com/mcasillasm/RFManalisis/internal/service"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	source, err := buildSource(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to prepare transaction source", "error", err)
		os.Exit(1)
	}

	engine := rfm.New(rfm.WithWorkers(cfg.Data.Workers))
	segmentation := service.NewSegmentationService(source, engine)

	// Score once at startup so the API serves results immediately. A failure
	// here is not fatal: POST /score retries once the data is fixed.
	if snap, err := segmentation.Run(ctx, cfg.Data.ReferenceDate); err != nil {
		logger.Error("initial scoring run failed", "error", err)
	} else {
		logger.Info("initial scoring run completed",
			"run_id", snap.RunID.String(),
			"customers", len(snap.Customers),
			"reference_date", snap.ReferenceDate.Format("2006-01-02"),
		)
	}

	apiHandlers := server.NewAPIHandlers(logger, segmentation)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.SourceHealthService{Source: source},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildSource reads transactions from the configured CSV file, or falls back
// to a generated dataset so the server is usable out of the box.
func buildSource(ctx context.Context, logger *slog.Logger, cfg config.Config) (store.Source, error) {
	if cfg.Data.TransactionsCSV != "" {
		logger.Info("loading transactions from csv", "path", cfg.Data.TransactionsCSV)
		return store.NewCSVSource(cfg.Data.TransactionsCSV), nil
	}

	logger.Info("no transactions file configured, generating a synthetic dataset")
	genCfg := generator.DefaultConfig()
	genCfg.Today = time.Now().UTC()
	txs, err := generator.New(genCfg).Generate(ctx)
	if err != nil {
		return nil, err
	}
	return store.NewMemorySource(txs), nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
