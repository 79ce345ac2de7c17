package rest

import (
	"net/http"
	"strconv"

	"loans/core"
	"loans/handler/render"

	"github.com/go-chi/chi"
)

func allSnapshotsHandler(snapshotStore core.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshots, err := snapshotStore.All(r.Context())
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, snapshots)
	}
}

func snapshotHandler(snapshotStore core.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "day")

		day, err := strconv.ParseInt(raw, 10, 64)
		if err != nil && raw != "latest" {
			render.BadRequest(w, err)
			return
		}
		if raw == "latest" {
			day = -1
		}

		snapshot, err := snapshotStore.Find(r.Context(), day)
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, snapshot)
	}
}
