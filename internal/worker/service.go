package worker

import (
	"context"
	"errors"
	"time"

	"github.com/averoza/marketplace/internal/config"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultRecomputeInterval = time.Hour

// Service runs the asynq consumer plus the periodic store-counter
// recompute sweep that reconciles any drift from lost delta tasks.
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	recomputeInterval time.Duration
}

// NewService creates the queue worker service
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	interval := defaultRecomputeInterval
	if cfg.Order.StatsRecomputeIntervalM > 0 {
		interval = time.Duration(cfg.Order.StatsRecomputeIntervalM) * time.Minute
	}

	return &Service{
		name:              "worker",
		server:            server,
		mux:               mux,
		consumer:          consumer,
		recomputeInterval: interval,
	}, nil
}

// Name service name
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer; blocks until shutdown
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.StoreService != nil {
		go s.runStatsRecomputeLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runStatsRecomputeLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.StoreService == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.StoreService.RecomputeAllStats(); err != nil {
			logger.Warnw("worker_stats_recompute_sweep_failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.recomputeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
