package rest

import (
	"net/http"

	"loans/core"
	"loans/handler/render"
)

func paramsHandler(paramStore core.ParamStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paramStore.Load(r.Context())
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		render.JSON(w, params)
	}
}
