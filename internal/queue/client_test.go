package queue

import (
	"testing"

	"github.com/dujiao-next/promo-engine/internal/config"
	"github.com/dujiao-next/promo-engine/internal/constants"
)

func TestDisabledClientIgnoresEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueuePromotionSnapshotRefresh(PromotionSnapshotRefreshPayload{PromotionID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestSnapshotRefreshTaskPayload(t *testing.T) {
	task, err := NewPromotionSnapshotRefreshTask(PromotionSnapshotRefreshPayload{PromotionID: 7, Reason: "update"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != constants.TaskPromotionSnapshotRefresh {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParsePromotionSnapshotRefreshPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.PromotionID != 7 || payload.Reason != "update" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("default concurrency want 4 got %d", cfg.Concurrency)
	}
	if cfg.Queues[constants.QueueCritical] != 1 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("default queues missing: %+v", cfg.Queues)
	}
}
