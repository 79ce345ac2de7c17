package cmd

import (
	"loans/core"
	"loans/store/asset"
	"loans/store/checkpoint"
	"loans/store/event"
	"loans/store/output"
	"loans/store/params"
	"loans/store/position"
	"loans/store/queue"
	"loans/store/snapshot"

	"github.com/fox-one/pkg/store/db"
)

func provideCheckpointStore(db *db.DB) core.CheckpointStore {
	return checkpoint.New(providePropertyStore(db))
}

func provideAssetStore(db *db.DB) core.AssetStore {
	return asset.New(db)
}

func providePositionStore(db *db.DB) core.PositionStore {
	return position.Cache(position.New(db))
}

func provideQueueStore(db *db.DB) core.QueueStore {
	return queue.New(db)
}

func provideSnapshotStore(db *db.DB) core.SnapshotStore {
	return snapshot.New(db)
}

func provideEventStore(db *db.DB) core.EventStore {
	return event.New(db)
}

func provideOutputStore(db *db.DB) core.OutputStore {
	return output.New(db)
}

func provideParamStore(db *db.DB) core.ParamStore {
	return params.New(db)
}
