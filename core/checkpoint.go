package core

import "context"

// CheckpointStore durable bookkeeping values the engine and workers use
// to survive restarts: the current day, distribution flags, worker
// cursors.
type CheckpointStore interface {
	GetInt64(ctx context.Context, key string) (int64, error)
	GetBool(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, key string, value interface{}) error
}
