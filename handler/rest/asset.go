package rest

import (
	"net/http"
	"strings"

	"loans/core"
	"loans/handler/render"
	"loans/handler/views"
	"loans/pkg/number"

	"github.com/go-chi/chi"
)

func allAssetsHandler(assetStore core.AssetStore, queueStore core.QueueStore, pricez core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		assets, err := assetStore.All(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		assetViews := make([]*views.Asset, 0, len(assets))
		for _, asset := range assets {
			assetViews = append(assetViews, getAssetView(r, asset, queueStore, pricez))
		}

		render.JSON(w, assetViews)
	}
}

func assetHandler(assetStore core.AssetStore, queueStore core.QueueStore, pricez core.PriceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		asset, err := assetStore.Find(ctx, symbol)
		if err != nil {
			render.NotFoundRequest(w, err)
			return
		}

		render.JSON(w, getAssetView(r, asset, queueStore, pricez))
	}
}

func getAssetView(r *http.Request, asset *core.Asset, queueStore core.QueueStore, pricez core.PriceService) *views.Asset {
	ctx := r.Context()

	price, err := pricez.Price(ctx, asset.Symbol)
	if err != nil {
		price = number.Zero
	}

	borrowers, err := queueStore.Size(ctx, asset.Symbol)
	if err != nil {
		borrowers = 0
	}

	return &views.Asset{
		Asset:     *asset,
		Price:     price.Decimal(),
		Borrowers: borrowers,
	}
}
