package remote

import (
	"context"
	"strconv"

	"loans/pkg/number"
)

// rewards and dividends live on the same gateway but behind distinct
// route prefixes, so the engine can be pointed at separate deployments
// later without touching the call sites.

// UpdateRewardsData implements core.RewardsService.
func (r *Remote) UpdateRewardsData(ctx context.Context, name string, totalSupply number.Amount, positionID uint64, balance number.Amount) error {
	return r.post(ctx, "/rewards/update", map[string]interface{}{
		"name":         name,
		"total_supply": totalSupply,
		"position_id":  positionID,
		"balance":      balance,
	}, nil)
}

// UpdateBatchRewardsData implements core.RewardsService.
func (r *Remote) UpdateBatchRewardsData(ctx context.Context, name string, totalSupply number.Amount, balances map[uint64]number.Amount) error {
	items := make(map[string]number.Amount, len(balances))
	for id, balance := range balances {
		items[strconv.FormatUint(id, 10)] = balance
	}

	return r.post(ctx, "/rewards/update_batch", map[string]interface{}{
		"name":         name,
		"total_supply": totalSupply,
		"balances":     items,
	}, nil)
}

// Distribute implements core.RewardsService.
func (r *Remote) Distribute(ctx context.Context) (bool, error) {
	var body doneResp
	if err := r.post(ctx, "/rewards/distribute", nil, &body); err != nil {
		return false, err
	}

	return body.Done, nil
}

// Dividends drives the dividends distribution through the gateway.
type Dividends struct {
	remote *Remote
}

// Dividends returns the dividends side of the gateway as a
// core.DividendsService.
func (r *Remote) Dividends() *Dividends {
	return &Dividends{remote: r}
}

// Distribute implements core.DividendsService.
func (d *Dividends) Distribute(ctx context.Context) (bool, error) {
	var body doneResp
	if err := d.remote.post(ctx, "/dividends/distribute", nil, &body); err != nil {
		return false, err
	}

	return body.Done, nil
}
