package rest

import (
	"net/http"
	"strconv"

	"loans/core"
	"loans/handler/param"
	"loans/handler/render"
	"loans/handler/views"

	"github.com/go-chi/chi"
)

func allPositionsHandler(positionStore core.PositionStore, positionz core.PositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			From  uint64 `schema:"from"`
			Limit int    `schema:"limit"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}
		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		positions, err := positionStore.List(ctx, params.From, params.Limit)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		positionViews := make([]*views.Position, 0, len(positions))
		for _, position := range positions {
			positionViews = append(positionViews, getPositionView(r, position, positionz))
		}

		render.JSON(w, positionViews)
	}
}

func positionHandler(positionStore core.PositionStore, positionz core.PositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		position, err := positionStore.Find(ctx, id)
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, getPositionView(r, position, positionz))
	}
}

func positionByAddressHandler(positionStore core.PositionStore, positionz core.PositionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		position, err := positionStore.FindByAddress(ctx, chi.URLParam(r, "address"))
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, getPositionView(r, position, positionz))
	}
}

func getPositionView(r *http.Request, position *core.Position, positionz core.PositionService) *views.Position {
	ctx := r.Context()

	view := &views.Position{Position: *position}

	if collateralValue, err := positionz.CollateralValue(ctx, position); err == nil {
		view.CollateralValue = collateralValue.Decimal()
	}
	if debtValue, err := positionz.DebtValue(ctx, position, true); err == nil {
		view.DebtValue = debtValue.Decimal()
	}
	if standing, err := positionz.Standing(ctx, position); err == nil {
		view.Standing = standing.String()
	}

	return view
}
