package queue

import (
	"encoding/json"

	"github.com/averoza/marketplace/internal/constants"

	"github.com/hibiken/asynq"
)

// StoreStatsApplyPayload is one store's counter delta from a single
// order. OrderNumber plus the delta sign form the dedupe key, so
// retries never double-apply.
type StoreStatsApplyPayload struct {
	StoreID      uint   `json:"store_id"`
	OrderNumber  string `json:"order_number"`
	OrdersDelta  int    `json:"orders_delta"`
	RevenueDelta string `json:"revenue_delta"`
}

// StoreStatsRecomputePayload asks for a full rebuild of one store's
// counters from the order ledger.
type StoreStatsRecomputePayload struct {
	StoreID uint `json:"store_id"`
}

// NewStoreStatsApplyTask builds the counter-delta task
func NewStoreStatsApplyTask(payload StoreStatsApplyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskStoreStatsApply, data), nil
}

// NewStoreStatsRecomputeTask builds the full-rebuild task
func NewStoreStatsRecomputeTask(payload StoreStatsRecomputePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskStoreStatsRecompute, data), nil
}
