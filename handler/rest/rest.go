package rest

import (
	"errors"
	"net/http"

	"loans/core"
	"loans/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(
	system *core.System,
	assetStore core.AssetStore,
	positionStore core.PositionStore,
	queueStore core.QueueStore,
	snapshotStore core.SnapshotStore,
	eventStore core.EventStore,
	paramStore core.ParamStore,
	positionz core.PositionService,
	pricez core.PriceService,
) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/assets", allAssetsHandler(assetStore, queueStore, pricez))
	router.Get("/assets/{symbol}", assetHandler(assetStore, queueStore, pricez))
	router.Get("/positions", allPositionsHandler(positionStore, positionz))
	router.Get("/positions/{id}", positionHandler(positionStore, positionz))
	router.Get("/addresses/{address}", positionByAddressHandler(positionStore, positionz))
	router.Get("/snapshots", allSnapshotsHandler(snapshotStore))
	router.Get("/snapshots/{day}", snapshotHandler(snapshotStore))
	router.Get("/params", paramsHandler(paramStore))
	router.Get("/events", eventsHandler(eventStore))

	return router
}
