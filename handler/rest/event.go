package rest

import (
	"net/http"

	"loans/core"
	"loans/handler/param"
	"loans/handler/render"
)

func eventsHandler(eventStore core.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			From  int64  `schema:"from"`
			Limit int    `schema:"limit"`
			Type  string `schema:"type"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}
		if params.Limit <= 0 || params.Limit > 500 {
			params.Limit = 100
		}

		var (
			events []*core.Event
			err    error
		)
		if params.Type != "" {
			events, err = eventStore.ListByType(ctx, params.Type, params.From, params.Limit)
		} else {
			events, err = eventStore.List(ctx, params.From, params.Limit)
		}
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, events)
	}
}
