package worker

import (
	"context"
	"fmt"

	"github.com/dujiao-next/promo-engine/internal/logger"
	"github.com/dujiao-next/promo-engine/internal/provider"
	"github.com/dujiao-next/promo-engine/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPromotionSnapshotRefresh, c.handlePromotionSnapshotRefresh)
}

func (c *Consumer) handlePromotionSnapshotRefresh(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_promotion_snapshot_refresh_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParsePromotionSnapshotRefreshPayload(task)
	if err != nil {
		// 载荷损坏时重试无意义
		logger.Warnw("worker_promotion_snapshot_refresh_unmarshal_failed", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := c.refreshSnapshot(ctx, payload); err != nil {
		logger.Warnw("worker_promotion_snapshot_refresh_failed",
			"promotion_id", payload.PromotionID,
			"reason", payload.Reason,
			"error", err,
		)
		return err
	}
	return nil
}

// refreshSnapshot 重建规则快照并回写缓存，供各 API 实例共享
func (c *Consumer) refreshSnapshot(ctx context.Context, payload queue.PromotionSnapshotRefreshPayload) error {
	if c.Container == nil || c.PromotionService == nil {
		logger.Debugw("worker_promotion_snapshot_refresh_skip_no_service")
		return nil
	}
	snapshot, err := c.PromotionService.Refresh(ctx)
	if err != nil {
		return err
	}
	logger.Infow("worker_promotion_snapshot_refreshed",
		"promotion_id", payload.PromotionID,
		"reason", payload.Reason,
		"rules", len(snapshot.Rules),
		"invalid", len(snapshot.Invalid),
	)
	return nil
}
