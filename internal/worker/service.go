package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name         string
	server       *asynq.Server
	mux          *asynq.ServeMux
	consumer     *Consumer
	warmInterval time.Duration
}

// NewService 创建异步队列服务
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
	return &Service{
		name:         "worker",
		server:       server,
		mux:          mux,
		consumer:     consumer,
		warmInterval: snapshotWarmInterval(cfg.Promotion),
	}, nil
}

// snapshotWarmInterval 在 Redis 快照过期前重建，生效/失效时间到点的规则随之更新
func snapshotWarmInterval(cfg config.PromotionConfig) time.Duration {
	interval := cfg.SnapshotTTL() / 2
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	return interval
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PromotionService != nil {
		go s.runSnapshotWarmLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runSnapshotWarmLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PromotionService == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.refreshSnapshot(ctx, queue.PromotionSnapshotRefreshPayload{Reason: "warm"}); err != nil {
			logger.Warnw("worker_promotion_snapshot_warm_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.warmInterval)
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
