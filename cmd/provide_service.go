package cmd

import (
	"loans/core"
	"loans/service/engine"
	"loans/service/oracle"
	positionservice "loans/service/position"
	"loans/service/remote"

	"github.com/fox-one/pkg/store/db"
)

func providePriceService() core.PriceService {
	return oracle.New(provideConfig())
}

func provideGateway() *remote.Remote {
	return remote.New(provideConfig())
}

func providePositionService(
	assetStore core.AssetStore,
	snapshotStore core.SnapshotStore,
	paramStore core.ParamStore,
	pricez core.PriceService,
) core.PositionService {
	return positionservice.New(assetStore, snapshotStore, paramStore, pricez, nil)
}

func provideEngine(database *db.DB) *engine.Engine {
	system := provideSystem()
	gateway := provideGateway()

	assetStore := provideAssetStore(database)
	positionStore := providePositionStore(database)
	queueStore := provideQueueStore(database)
	snapshotStore := provideSnapshotStore(database)
	eventStore := provideEventStore(database)
	paramStore := provideParamStore(database)

	pricez := providePriceService()
	positionz := providePositionService(assetStore, snapshotStore, paramStore, pricez)

	return engine.New(
		system,
		database,
		provideCheckpointStore(database),
		assetStore,
		positionStore,
		queueStore,
		snapshotStore,
		eventStore,
		paramStore,
		positionz,
		gateway,
		gateway,
		gateway,
		gateway,
		gateway.Dividends(),
		gateway,
		gateway,
		pricez,
		nil,
	)
}
