package metrics

import (
	"context"

	"go.uber.org/zap"
)

// Counter is implemented by the user and history repositories.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// UpdateStoreMetrics refreshes the user and history gauges.
// Call this after registrations and history changes.
func UpdateStoreMetrics(ctx context.Context, users, history Counter, log *zap.Logger) {
	if users != nil {
		if n, err := users.Count(ctx); err != nil {
			log.Warn("metrics: failed to count users", zap.Error(err))
		} else {
			UsersTotal.Set(float64(n))
		}
	}

	if history != nil {
		if n, err := history.Count(ctx); err != nil {
			log.Warn("metrics: failed to count history records", zap.Error(err))
		} else {
			HistoryRecordsTotal.Set(float64(n))
		}
	}
}
