package remote

import (
	"context"
	"fmt"
	"time"

	"loans/core"
	"loans/pkg/id"
	"loans/pkg/number"

	"github.com/go-resty/resty/v2"
)

// Remote binds the external collaborators to the operator gateway over
// plain JSON HTTP. The gateway is trusted for execution only; every
// returned amount is validated by the engine against its own
// bookkeeping before any state changes.
type Remote struct {
	client *resty.Client
}

// New new gateway client
func New(cfg *core.Config) *Remote {
	client := resty.New().
		SetBaseURL(cfg.Gateway.EndPoint).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &Remote{client: client}
}

type amountResp struct {
	Amount number.Amount `json:"amount"`
}

type doneResp struct {
	Done bool `json:"done"`
}

type addressResp struct {
	Address string `json:"address"`
}

func (r *Remote) post(ctx context.Context, path string, body, out interface{}) error {
	req := r.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", id.GenTraceID()).
		SetBody(body)
	if out != nil {
		req = req.SetResult(out)
	}

	resp, err := req.Post(path)
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("gateway: status %s for %s", resp.Status(), path)
	}

	return nil
}

func (r *Remote) get(ctx context.Context, path string, out interface{}) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", id.GenTraceID()).
		SetResult(out).
		Get(path)
	if err != nil {
		return err
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("gateway: status %s for %s", resp.Status(), path)
	}

	return nil
}

// Mint implements core.TokenService.
func (r *Remote) Mint(ctx context.Context, symbol, to string, amount number.Amount) error {
	return r.post(ctx, "/token/mint", map[string]interface{}{
		"symbol": symbol,
		"to":     to,
		"amount": amount,
	}, nil)
}

// BurnFrom implements core.TokenService.
func (r *Remote) BurnFrom(ctx context.Context, symbol, from string, amount number.Amount) error {
	return r.post(ctx, "/token/burn", map[string]interface{}{
		"symbol": symbol,
		"from":   from,
		"amount": amount,
	}, nil)
}

// Transfer implements core.TokenService.
func (r *Remote) Transfer(ctx context.Context, symbol, to string, amount number.Amount) error {
	return r.post(ctx, "/token/transfer", map[string]interface{}{
		"symbol": symbol,
		"to":     to,
		"amount": amount,
	}, nil)
}

// Stake implements core.StakingService.
func (r *Remote) Stake(ctx context.Context, value number.Amount) (number.Amount, error) {
	var body amountResp
	if err := r.post(ctx, "/staking/stake", map[string]interface{}{
		"value": value,
	}, &body); err != nil {
		return number.Zero, err
	}

	return body.Amount, nil
}

// Swap implements core.DexService.
func (r *Remote) Swap(ctx context.Context, fromSymbol, toSymbol string, amount number.Amount) (number.Amount, error) {
	var body amountResp
	if err := r.post(ctx, "/dex/swap", map[string]interface{}{
		"from_symbol": fromSymbol,
		"to_symbol":   toSymbol,
		"amount":      amount,
	}, &body); err != nil {
		return number.Zero, err
	}

	return body.Amount, nil
}

// Redeem implements core.ReserveService.
func (r *Remote) Redeem(ctx context.Context, to string, amount number.Amount) (number.Amount, error) {
	var body amountResp
	if err := r.post(ctx, "/reserve/redeem", map[string]interface{}{
		"to":     to,
		"amount": amount,
	}, &body); err != nil {
		return number.Zero, err
	}

	return body.Amount, nil
}

// FeeHandler implements core.Governance.
func (r *Remote) FeeHandler(ctx context.Context) (string, error) {
	var body addressResp
	if err := r.get(ctx, "/governance/fee_handler", &body); err != nil {
		return "", err
	}

	return body.Address, nil
}

// ReserveFund implements core.Governance.
func (r *Remote) ReserveFund(ctx context.Context) (string, error) {
	var body addressResp
	if err := r.get(ctx, "/governance/reserve_fund", &body); err != nil {
		return "", err
	}

	return body.Address, nil
}
