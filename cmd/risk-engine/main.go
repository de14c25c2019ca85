package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/defirisk/wsteth-risk-engine/config"
	"github.com/defirisk/wsteth-risk-engine/internal/kafka"
	"github.com/defirisk/wsteth-risk-engine/internal/provider"
	"github.com/defirisk/wsteth-risk-engine/internal/risk"
	"github.com/defirisk/wsteth-risk-engine/pkg/api"
	"github.com/defirisk/wsteth-risk-engine/pkg/metrics"
	"github.com/defirisk/wsteth-risk-engine/pkg/utils/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", "development")
		logger.GetLogger("main").Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.App.LogLevel, cfg.App.Environment)
	log := logger.GetLogger("main")
	defer log.Sync()

	log.Infof("Starting %s", cfg.App.Name)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.NewRecorder()
	dataProvider := provider.NewStatic(cfg.Risk.StakingAPY)
	evaluator := risk.NewEvaluator(dataProvider, cfg, recorder)

	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		publisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, recorder)
		defer publisher.Close()
	}

	apiServer := api.NewServer(
		api.Config{
			Host:         cfg.API.Host,
			Port:         cfg.API.Port,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
		},
		evaluator,
		dataProvider,
		recorder,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := apiServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Errorf("API server error: %v", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer shutdownCancel()
		return apiServer.Stop(shutdownCtx)
	})

	g.Go(func() error {
		return runEvaluationLoop(gctx, cfg, evaluator, publisher, log)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Errorf("Shutdown with error: %v", err)
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}

// runEvaluationLoop periodically evaluates the position and publishes
// the report when a Kafka publisher is configured.
func runEvaluationLoop(ctx context.Context, cfg *config.Config, evaluator *risk.Evaluator, publisher *kafka.Publisher, log *logger.Logger) error {
	interval := cfg.Risk.EvaluationInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	evaluateOnce := func() {
		report, err := evaluator.Evaluate()
		if err != nil {
			log.Errorf("Risk evaluation failed: %v", err)
			return
		}
		if publisher != nil {
			publishCtx, publishCancel := context.WithTimeout(ctx, 10*time.Second)
			defer publishCancel()
			if err := publisher.PublishReport(publishCtx, report); err != nil {
				log.Errorf("Failed to publish risk report: %v", err)
			}
		}
	}

	evaluateOnce()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evaluateOnce()
		}
	}
}
