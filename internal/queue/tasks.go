package queue

import (
	"encoding/json"

	"github.com/dujiao-next/promo-engine/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskPromotionSnapshotRefresh 促销规则快照刷新任务
const TaskPromotionSnapshotRefresh = constants.TaskPromotionSnapshotRefresh

// PromotionSnapshotRefreshPayload 快照刷新任务载荷
type PromotionSnapshotRefreshPayload struct {
	PromotionID uint   `json:"promotion_id"`
	Reason      string `json:"reason"`
}

// NewPromotionSnapshotRefreshTask 创建快照刷新任务
func NewPromotionSnapshotRefreshTask(payload PromotionSnapshotRefreshPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPromotionSnapshotRefresh, body), nil
}

// ParsePromotionSnapshotRefreshPayload 解析快照刷新任务载荷
func ParsePromotionSnapshotRefreshPayload(task *asynq.Task) (PromotionSnapshotRefreshPayload, error) {
	var payload PromotionSnapshotRefreshPayload
	if task == nil {
		return payload, nil
	}
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
