package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/averoza/marketplace/internal/cache"
	"github.com/averoza/marketplace/internal/constants"
	"github.com/averoza/marketplace/internal/logger"
	"github.com/averoza/marketplace/internal/models"
	"github.com/averoza/marketplace/internal/provider"
	"github.com/averoza/marketplace/internal/queue"

	"github.com/hibiken/asynq"
)

// Dedupe markers outlive asynq's retry window comfortably.
const statsApplyMarkerTTL = 72 * time.Hour

// Consumer handles queued store-counter tasks
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(constants.TaskStoreStatsApply, c.handleStoreStatsApply)
	mux.HandleFunc(constants.TaskStoreStatsRecompute, c.handleStoreStatsRecompute)
}

// handleStoreStatsApply applies one order's counter delta to a store.
// A Redis marker keyed by store, order and delta sign keeps retries
// from double-counting.
func (c *Consumer) handleStoreStatsApply(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_store_stats_apply_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StoreStatsApplyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_store_stats_apply_unmarshal_failed", "error", err)
		return err
	}
	if payload.StoreID == 0 || payload.OrderNumber == "" {
		logger.Debugw("worker_store_stats_apply_skip_invalid_payload",
			"store_id", payload.StoreID,
			"order_number", payload.OrderNumber,
		)
		return nil
	}

	revenueDelta, err := models.NewMoneyFromString(payload.RevenueDelta)
	if err != nil {
		logger.Warnw("worker_store_stats_apply_bad_revenue",
			"store_id", payload.StoreID,
			"order_number", payload.OrderNumber,
			"revenue_delta", payload.RevenueDelta,
			"error", err,
		)
		return nil
	}

	marker := statsApplyMarkerKey(payload)
	fresh, err := cache.SetNX(ctx, marker, "1", statsApplyMarkerTTL)
	if err != nil {
		logger.Warnw("worker_store_stats_apply_marker_failed", "key", marker, "error", err)
		return err
	}
	if !fresh {
		logger.Debugw("worker_store_stats_apply_skip_duplicate",
			"store_id", payload.StoreID,
			"order_number", payload.OrderNumber,
		)
		return nil
	}

	if err := c.StoreRepo.ApplyStatsDelta(payload.StoreID, payload.OrdersDelta, revenueDelta, 0); err != nil {
		// Drop the marker so the retry is not treated as a duplicate.
		if delErr := cache.Del(ctx, marker); delErr != nil {
			logger.Warnw("worker_store_stats_apply_marker_rollback_failed", "key", marker, "error", delErr)
		}
		logger.Warnw("worker_store_stats_apply_failed",
			"store_id", payload.StoreID,
			"order_number", payload.OrderNumber,
			"error", err,
		)
		return err
	}
	return nil
}

// handleStoreStatsRecompute rebuilds one store's counters from the
// order ledger. Naturally idempotent, no marker needed.
func (c *Consumer) handleStoreStatsRecompute(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_store_stats_recompute_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StoreStatsRecomputePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_store_stats_recompute_unmarshal_failed", "error", err)
		return err
	}
	if payload.StoreID == 0 {
		logger.Debugw("worker_store_stats_recompute_skip_invalid_payload", "store_id", payload.StoreID)
		return nil
	}
	if err := c.StoreService.RecomputeStats(payload.StoreID); err != nil {
		logger.Warnw("worker_store_stats_recompute_failed", "store_id", payload.StoreID, "error", err)
		return err
	}
	return nil
}

func statsApplyMarkerKey(payload queue.StoreStatsApplyPayload) string {
	sign := "+"
	if payload.OrdersDelta < 0 {
		sign = "-"
	}
	return fmt.Sprintf("stats:applied:%d:%s:%s", payload.StoreID, payload.OrderNumber, sign)
}
