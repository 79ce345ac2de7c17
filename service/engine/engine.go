package engine

import (
	"context"
	"sync"
	"time"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	uuidutil "github.com/fox-one/pkg/uuid"
)

const (
	currentDayKey    = "engine:current_day"
	rewardsDoneKey   = "engine:rewards_done"
	dividendsDoneKey = "engine:dividends_done"

	// reward data source name pushed to the rewards collaborator
	rewardsName = "Loans"
)

// Engine the debt engine: owns every public operation and enforces all
// invariants, composing the registry, ledger, queue and snapshot store
// and calling out to the external collaborators. Operations are
// serialized; the ledger is always observed in a fully consistent state
// between operations.
type Engine struct {
	mux sync.Mutex

	system      *core.System
	db          *db.DB
	checkpoints core.CheckpointStore

	assetStore    core.AssetStore
	positionStore core.PositionStore
	queueStore    core.QueueStore
	snapshotStore core.SnapshotStore
	eventStore    core.EventStore
	paramStore    core.ParamStore

	positionz  core.PositionService
	tokenz     core.TokenService
	stakingz   core.StakingService
	dexz       core.DexService
	rewardz    core.RewardsService
	dividendz  core.DividendsService
	reservez   core.ReserveService
	governance core.Governance
	pricez     core.PriceService

	dead core.DeadPolicy
	now  func() time.Time
}

// New new engine
func New(
	system *core.System,
	database *db.DB,
	checkpoints core.CheckpointStore,
	assetStore core.AssetStore,
	positionStore core.PositionStore,
	queueStore core.QueueStore,
	snapshotStore core.SnapshotStore,
	eventStore core.EventStore,
	paramStore core.ParamStore,
	positionz core.PositionService,
	tokenz core.TokenService,
	stakingz core.StakingService,
	dexz core.DexService,
	rewardz core.RewardsService,
	dividendz core.DividendsService,
	reservez core.ReserveService,
	governance core.Governance,
	pricez core.PriceService,
	dead core.DeadPolicy,
) *Engine {
	if dead == nil {
		dead = core.DefaultDeadPolicy
	}

	return &Engine{
		system:      system,
		db:          database,
		checkpoints: checkpoints,

		assetStore:    assetStore,
		positionStore: positionStore,
		queueStore:    queueStore,
		snapshotStore: snapshotStore,
		eventStore:    eventStore,
		paramStore:    paramStore,

		positionz:  positionz,
		tokenz:     tokenz,
		stakingz:   stakingz,
		dexz:       dexz,
		rewardz:    rewardz,
		dividendz:  dividendz,
		reservez:   reservez,
		governance: governance,
		pricez:     pricez,

		dead: dead,
		now:  time.Now,
	}
}

// SetClock overrides the engine clock.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

func (e *Engine) day(params *core.Params) int64 {
	return (e.now().Unix() - params.TimeOffset) / core.DayLength
}

// tx runs fn inside a database transaction. Without a database every
// write goes straight to the stores.
func (e *Engine) tx(fn func(tx *db.DB) error) error {
	if e.db == nil {
		return fn(nil)
	}
	return e.db.Tx(fn)
}

func (e *Engine) emit(ctx context.Context, tx *db.DB, event *core.Event) error {
	if event.TraceID == "" {
		event.TraceID = uuidutil.New()
	}
	event.CreatedAt = e.now()
	return e.eventStore.Create(ctx, tx, event)
}

// setDebt writes a borrowable balance and keeps the borrower queue,
// the current snapshot (pre-continuous) or the rewards collaborator
// (continuous) in step with it.
func (e *Engine) setDebt(
	ctx context.Context,
	tx *db.DB,
	params *core.Params,
	day int64,
	asset *core.Asset,
	position *core.Position,
	debt number.Amount,
	price number.Amount,
) error {
	old := position.Balance(asset.Symbol)

	if err := e.positionStore.SetBalance(ctx, tx, position.ID, asset.Symbol, debt); err != nil {
		return err
	}
	if position.Balances == nil {
		position.Balances = make(map[string]number.Amount)
	}
	position.Balances[asset.Symbol] = debt

	switch {
	case old.IsZero() && !debt.IsZero():
		if err := e.queueStore.Add(ctx, tx, asset.Symbol, position.ID, debt); err != nil {
			return err
		}
	case !old.IsZero() && debt.IsZero():
		if err := e.queueStore.Remove(ctx, tx, asset.Symbol, position.ID); err != nil {
			return err
		}
	case !debt.IsZero():
		if err := e.queueStore.UpdateDebt(ctx, tx, asset.Symbol, position.ID, debt); err != nil {
			return err
		}
	}

	if day >= params.ContinuousRewardDay {
		return e.rewardz.UpdateRewardsData(ctx, rewardsName, asset.TotalSupply, position.ID, debt)
	}

	if err := e.snapshotStore.SaveBalance(ctx, tx, &core.SnapshotBalance{
		Day:        day,
		PositionID: position.ID,
		Symbol:     asset.Symbol,
		Debt:       debt,
	}); err != nil {
		return err
	}

	return e.adjustMiningDebt(ctx, tx, day, old, debt, price)
}

// adjustMiningDebt folds a debt change into the running aggregate of
// the current day's snapshot, valued at the current price.
func (e *Engine) adjustMiningDebt(ctx context.Context, tx *db.DB, day int64, old, debt, price number.Amount) error {
	snapshot, err := e.snapshotStore.Find(ctx, day)
	if err != nil {
		return err
	}

	if debt.GreaterThan(old) {
		delta := debt.Sub(old).MulDiv(price, number.Exa)
		snapshot.TotalMiningDebt = snapshot.TotalMiningDebt.Add(delta)
	} else {
		delta := old.Sub(debt).MulDiv(price, number.Exa)
		snapshot.TotalMiningDebt = snapshot.TotalMiningDebt.Sub(number.Min(snapshot.TotalMiningDebt, delta))
	}

	return e.snapshotStore.Update(ctx, tx, snapshot)
}

func (e *Engine) setCollateral(ctx context.Context, tx *db.DB, position *core.Position, symbol string, amount number.Amount) error {
	if err := e.positionStore.SetBalance(ctx, tx, position.ID, symbol, amount); err != nil {
		return err
	}
	if position.Balances == nil {
		position.Balances = make(map[string]number.Amount)
	}
	position.Balances[symbol] = amount
	return nil
}

// registerTransition records an open-state change of the position in
// the current day's add/remove sets (pre-continuous regime only).
func (e *Engine) registerTransition(ctx context.Context, tx *db.DB, params *core.Params, day int64, position *core.Position, wasOpen bool) error {
	if day >= params.ContinuousRewardDay {
		return nil
	}

	isOpen := position.Open()
	if isOpen == wasOpen {
		return nil
	}

	snapshot, err := e.snapshotStore.Find(ctx, day)
	if err != nil {
		return err
	}

	id := int64(position.ID)
	if isOpen {
		if contains(snapshot.RemoveNonzero, id) {
			snapshot.RemoveNonzero = exclude(snapshot.RemoveNonzero, id)
		} else if !contains(snapshot.AddNonzero, id) {
			snapshot.AddNonzero = append(snapshot.AddNonzero, id)
		}
	} else {
		if contains(snapshot.AddNonzero, id) {
			snapshot.AddNonzero = exclude(snapshot.AddNonzero, id)
		} else if !contains(snapshot.RemoveNonzero, id) {
			snapshot.RemoveNonzero = append(snapshot.RemoveNonzero, id)
		}
	}

	return e.snapshotStore.Update(ctx, tx, snapshot)
}

// evaluateDead re-checks the asset's viability after a bad-debt
// mutation. One way: a dead asset never comes back.
func (e *Engine) evaluateDead(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	if asset.Dead || !asset.IsBorrowable || asset.BadDebt.IsZero() {
		return nil
	}

	assetPrice, err := e.pricez.Price(ctx, asset.Symbol)
	if err != nil {
		return err
	}
	collateralPrice, err := e.pricez.Price(ctx, e.system.CollateralSymbol)
	if err != nil {
		return err
	}

	// liquidation pool is collateral; value it in the asset's own units
	poolInAsset := asset.LiquidationPool.MulDiv(collateralPrice, assetPrice)
	netSupply := asset.TotalSupply.Sub(number.Min(asset.TotalSupply, poolInAsset))

	if e.dead(asset.BadDebt, netSupply) {
		asset.Dead = true
		return e.assetStore.Update(ctx, tx, asset)
	}

	return nil
}

func contains(list []int64, v int64) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func exclude(list []int64, v int64) []int64 {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
