package oracle

import (
	"context"
	"fmt"
	"time"

	"loans/core"
	"loans/pkg/number"

	"github.com/bluele/gcache"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const priceTTL = 30 * time.Second

type priceService struct {
	client *resty.Client
	cache  gcache.Cache
}

// New price service backed by the configured oracle endpoint. Prices
// are received as decimals and scaled to exa loop units; this service
// performs no price computation of its own.
func New(cfg *core.Config) core.PriceService {
	client := resty.New().
		SetBaseURL(cfg.Oracle.EndPoint).
		SetTimeout(10 * time.Second)

	return &priceService{
		client: client,
		cache:  gcache.New(64).LRU().Build(),
	}
}

type priceResp struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

func (s *priceService) Price(ctx context.Context, symbol string) (number.Amount, error) {
	if v, err := s.cache.Get(symbol); err == nil {
		if price, ok := v.(number.Amount); ok {
			return price, nil
		}
	}

	var body priceResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&body).
		Get("/price")
	if err != nil {
		return number.Zero, err
	}

	if !resp.IsSuccess() {
		return number.Zero, fmt.Errorf("oracle: status %s for %s", resp.Status(), symbol)
	}

	if body.Price.Sign() <= 0 {
		return number.Zero, fmt.Errorf("oracle: non-positive price for %s", symbol)
	}

	price, err := number.FromDecimal(body.Price)
	if err != nil {
		return number.Zero, err
	}

	_ = s.cache.SetWithExpire(symbol, price, priceTTL)
	return price, nil
}
