package handler

import (
	"errors"
	"net/http"

	"loans/core"
	"loans/handler/render"
	"loans/handler/rest"

	"github.com/go-chi/chi"
)

// Server server
type Server struct {
	system *core.System

	assetStore    core.AssetStore
	positionStore core.PositionStore
	queueStore    core.QueueStore
	snapshotStore core.SnapshotStore
	eventStore    core.EventStore
	paramStore    core.ParamStore

	positionz core.PositionService
	pricez    core.PriceService
}

// New new server function
func New(
	system *core.System,
	assetStore core.AssetStore,
	positionStore core.PositionStore,
	queueStore core.QueueStore,
	snapshotStore core.SnapshotStore,
	eventStore core.EventStore,
	paramStore core.ParamStore,
	positionz core.PositionService,
	pricez core.PriceService,
) Server {
	return Server{
		system:        system,
		assetStore:    assetStore,
		positionStore: positionStore,
		queueStore:    queueStore,
		snapshotStore: snapshotStore,
		eventStore:    eventStore,
		paramStore:    paramStore,
		positionz:     positionz,
		pricez:        pricez,
	}
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	r.Mount("/", rest.Handle(
		s.system,
		s.assetStore,
		s.positionStore,
		s.queueStore,
		s.snapshotStore,
		s.eventStore,
		s.paramStore,
		s.positionz,
		s.pricez,
	))

	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
