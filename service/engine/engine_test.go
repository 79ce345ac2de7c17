package engine

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"loans/core"
	"loans/pkg/number"
	positionservice "loans/service/position"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

const (
	testCollateral = "LOOP"
	testSynth      = "lUSD"

	adminAddr      = "admin"
	rebalancerAddr = "rebalancer"
	rewardsAddr    = "rewards-caller"
	engineAddr     = "engine"
	feeAddr        = "fee-pot"
	reserveAddr    = "reserve-fund"
)

// exa n whole units in exa scale
func exa(n int64) number.Amount {
	return number.Exa.Mul(number.New(uint64(n)))
}

type memAssets struct {
	assets map[string]*core.Asset
	nextID uint64
}

func newMemAssets() *memAssets {
	return &memAssets{assets: make(map[string]*core.Asset)}
}

func (s *memAssets) Create(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	s.nextID++
	asset.ID = s.nextID
	s.assets[asset.Symbol] = asset
	return nil
}

func (s *memAssets) Find(ctx context.Context, symbol string) (*core.Asset, error) {
	asset, ok := s.assets[symbol]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return asset, nil
}

func (s *memAssets) All(ctx context.Context) ([]*core.Asset, error) {
	var out []*core.Asset
	for _, a := range s.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memAssets) AllAsMap(ctx context.Context) (map[string]*core.Asset, error) {
	out := make(map[string]*core.Asset, len(s.assets))
	for k, v := range s.assets {
		out[k] = v
	}
	return out, nil
}

func (s *memAssets) Update(ctx context.Context, tx *db.DB, asset *core.Asset) error {
	s.assets[asset.Symbol] = asset
	return nil
}

type memPositions struct {
	byID   map[uint64]*core.Position
	byAddr map[string]uint64
	nextID uint64
}

func newMemPositions() *memPositions {
	return &memPositions{
		byID:   make(map[uint64]*core.Position),
		byAddr: make(map[string]uint64),
	}
}

func (s *memPositions) GetOrCreate(ctx context.Context, address string) (*core.Position, error) {
	if id, ok := s.byAddr[address]; ok {
		return s.byID[id], nil
	}
	s.nextID++
	p := &core.Position{
		ID:       s.nextID,
		Address:  address,
		Balances: make(map[string]number.Amount),
	}
	s.byID[p.ID] = p
	s.byAddr[address] = p.ID
	return p, nil
}

func (s *memPositions) Find(ctx context.Context, id uint64) (*core.Position, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *memPositions) FindByAddress(ctx context.Context, address string) (*core.Position, error) {
	id, ok := s.byAddr[address]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID[id], nil
}

func (s *memPositions) SetBalance(ctx context.Context, tx *db.DB, positionID uint64, symbol string, amount number.Amount) error {
	p, ok := s.byID[positionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Balances == nil {
		p.Balances = make(map[string]number.Amount)
	}
	p.Balances[symbol] = amount
	return nil
}

func (s *memPositions) List(ctx context.Context, fromID uint64, limit int) ([]*core.Position, error) {
	var out []*core.Position
	for _, p := range s.byID {
		if p.ID > fromID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memPositions) Count(ctx context.Context) (int64, error) {
	return int64(len(s.byID)), nil
}

type memQueue struct {
	entries  map[string][]*core.QueueEntry
	nextRank map[string]int64
}

func newMemQueue() *memQueue {
	return &memQueue{
		entries:  make(map[string][]*core.QueueEntry),
		nextRank: make(map[string]int64),
	}
}

func (s *memQueue) Add(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error {
	rank := s.nextRank[symbol]
	s.nextRank[symbol] = rank + 1
	s.entries[symbol] = append(s.entries[symbol], &core.QueueEntry{
		Symbol:     symbol,
		PositionID: positionID,
		Debt:       debt,
		Rank:       rank,
	})
	return nil
}

func (s *memQueue) Remove(ctx context.Context, tx *db.DB, symbol string, positionID uint64) error {
	list := s.entries[symbol]
	out := list[:0]
	for _, e := range list {
		if e.PositionID != positionID {
			out = append(out, e)
		}
	}
	s.entries[symbol] = out
	return nil
}

func (s *memQueue) UpdateDebt(ctx context.Context, tx *db.DB, symbol string, positionID uint64, debt number.Amount) error {
	for _, e := range s.entries[symbol] {
		if e.PositionID == positionID {
			e.Debt = debt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memQueue) Size(ctx context.Context, symbol string) (int64, error) {
	return int64(len(s.entries[symbol])), nil
}

func (s *memQueue) PeekBatch(ctx context.Context, symbol string, n int) ([]*core.QueueEntry, error) {
	list := append([]*core.QueueEntry(nil), s.entries[symbol]...)
	sort.Slice(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
	if len(list) > n {
		list = list[:n]
	}
	return list, nil
}

func (s *memQueue) Rotate(ctx context.Context, tx *db.DB, symbol string, entries []*core.QueueEntry) error {
	for _, moved := range entries {
		rank := s.nextRank[symbol]
		s.nextRank[symbol] = rank + 1
		for _, e := range s.entries[symbol] {
			if e.PositionID == moved.PositionID {
				e.Rank = rank
			}
		}
	}
	return nil
}

type memSnapshots struct {
	snapshots map[int64]*core.Snapshot
	balances  []*core.SnapshotBalance
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{snapshots: make(map[int64]*core.Snapshot)}
}

func (s *memSnapshots) Create(ctx context.Context, tx *db.DB, snapshot *core.Snapshot) error {
	if _, ok := s.snapshots[snapshot.Day]; ok {
		return fmt.Errorf("duplicate snapshot for day %d", snapshot.Day)
	}
	s.snapshots[snapshot.Day] = snapshot
	return nil
}

func (s *memSnapshots) Find(ctx context.Context, day int64) (*core.Snapshot, error) {
	if day == -1 {
		var latest *core.Snapshot
		for _, snap := range s.snapshots {
			if latest == nil || snap.Day > latest.Day {
				latest = snap
			}
		}
		if latest == nil {
			return nil, gorm.ErrRecordNotFound
		}
		return latest, nil
	}

	snap, ok := s.snapshots[day]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return snap, nil
}

func (s *memSnapshots) Update(ctx context.Context, tx *db.DB, snapshot *core.Snapshot) error {
	s.snapshots[snapshot.Day] = snapshot
	return nil
}

func (s *memSnapshots) All(ctx context.Context) ([]*core.Snapshot, error) {
	var out []*core.Snapshot
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

func (s *memSnapshots) SaveBalance(ctx context.Context, tx *db.DB, balance *core.SnapshotBalance) error {
	b := *balance
	s.balances = append(s.balances, &b)
	return nil
}

func (s *memSnapshots) BalanceAt(ctx context.Context, day int64, positionID uint64, symbol string) (number.Amount, error) {
	found := number.Zero
	best := int64(-1)
	for _, b := range s.balances {
		if b.PositionID != positionID || b.Symbol != symbol || b.Day > day {
			continue
		}
		if b.Day >= best {
			best = b.Day
			found = b.Debt
		}
	}
	return found, nil
}

type memEvents struct {
	events []*core.Event
}

func (s *memEvents) Create(ctx context.Context, tx *db.DB, event *core.Event) error {
	event.ID = int64(len(s.events) + 1)
	s.events = append(s.events, event)
	return nil
}

func (s *memEvents) List(ctx context.Context, fromID int64, limit int) ([]*core.Event, error) {
	var out []*core.Event
	for _, e := range s.events {
		if e.ID > fromID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memEvents) ListByType(ctx context.Context, eventType string, fromID int64, limit int) ([]*core.Event, error) {
	var out []*core.Event
	for _, e := range s.events {
		if e.Type == eventType && e.ID > fromID {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memEvents) byType(eventType string) []*core.Event {
	var out []*core.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type memParams struct {
	params *core.Params
	raw    map[string]string
}

func newMemParams() *memParams {
	return &memParams{
		params: core.DefaultParams(),
		raw:    make(map[string]string),
	}
}

func (s *memParams) Load(ctx context.Context) (*core.Params, error) {
	p := *s.params
	return &p, nil
}

func (s *memParams) Save(ctx context.Context, params *core.Params) error {
	p := *params
	s.params = &p
	return nil
}

func (s *memParams) Set(ctx context.Context, key, value string) error {
	s.raw[key] = value
	return nil
}

type memCheckpoints struct {
	values map[string]interface{}
}

func newMemCheckpoints() *memCheckpoints {
	return &memCheckpoints{values: make(map[string]interface{})}
}

func (s *memCheckpoints) GetInt64(ctx context.Context, key string) (int64, error) {
	if v, ok := s.values[key].(int64); ok {
		return v, nil
	}
	return 0, nil
}

func (s *memCheckpoints) GetBool(ctx context.Context, key string) (bool, error) {
	if v, ok := s.values[key].(bool); ok {
		return v, nil
	}
	return false, nil
}

func (s *memCheckpoints) Save(ctx context.Context, key string, value interface{}) error {
	s.values[key] = value
	return nil
}

type tokenCall struct {
	op     string
	symbol string
	addr   string
	amount number.Amount
}

type fakeTokens struct {
	calls []tokenCall
	fail  map[string]error
}

func (f *fakeTokens) record(op, symbol, addr string, amount number.Amount) error {
	if err := f.fail[op]; err != nil {
		return err
	}
	f.calls = append(f.calls, tokenCall{op, symbol, addr, amount})
	return nil
}

func (f *fakeTokens) Mint(ctx context.Context, symbol, to string, amount number.Amount) error {
	return f.record("mint", symbol, to, amount)
}

func (f *fakeTokens) BurnFrom(ctx context.Context, symbol, from string, amount number.Amount) error {
	return f.record("burn", symbol, from, amount)
}

func (f *fakeTokens) Transfer(ctx context.Context, symbol, to string, amount number.Amount) error {
	return f.record("transfer", symbol, to, amount)
}

// total sums every recorded amount matching op, symbol and addr; empty
// addr matches all.
func (f *fakeTokens) total(op, symbol, addr string) number.Amount {
	sum := number.Zero
	for _, c := range f.calls {
		if c.op == op && c.symbol == symbol && (addr == "" || c.addr == addr) {
			sum = sum.Add(c.amount)
		}
	}
	return sum
}

type fakeStaking struct {
	stake func(value number.Amount) (number.Amount, error)
}

func (f *fakeStaking) Stake(ctx context.Context, value number.Amount) (number.Amount, error) {
	if f.stake != nil {
		return f.stake(value)
	}
	return value, nil
}

type fakeDex struct {
	prices *fakePrices
	swap   func(from, to string, amount number.Amount) (number.Amount, error)
}

func (f *fakeDex) Swap(ctx context.Context, from, to string, amount number.Amount) (number.Amount, error) {
	if f.swap != nil {
		return f.swap(from, to, amount)
	}
	return amount.MulDiv(f.prices.prices[from], f.prices.prices[to]), nil
}

type rewardUpdate struct {
	totalSupply number.Amount
	positionID  uint64
	balance     number.Amount
}

type fakeRewards struct {
	distribute func() (bool, error)
	updates    []rewardUpdate
	batches    []map[uint64]number.Amount
}

func (f *fakeRewards) Distribute(ctx context.Context) (bool, error) {
	if f.distribute != nil {
		return f.distribute()
	}
	return true, nil
}

func (f *fakeRewards) UpdateRewardsData(ctx context.Context, name string, totalSupply number.Amount, positionID uint64, balance number.Amount) error {
	f.updates = append(f.updates, rewardUpdate{totalSupply, positionID, balance})
	return nil
}

func (f *fakeRewards) UpdateBatchRewardsData(ctx context.Context, name string, totalSupply number.Amount, balances map[uint64]number.Amount) error {
	f.batches = append(f.batches, balances)
	return nil
}

type fakeDividends struct {
	distribute func() (bool, error)
}

func (f *fakeDividends) Distribute(ctx context.Context) (bool, error) {
	if f.distribute != nil {
		return f.distribute()
	}
	return true, nil
}

type fakeReserve struct {
	redeem func(amount number.Amount) (number.Amount, error)
	calls  []number.Amount
}

func (f *fakeReserve) Redeem(ctx context.Context, to string, amount number.Amount) (number.Amount, error) {
	f.calls = append(f.calls, amount)
	if f.redeem != nil {
		return f.redeem(amount)
	}
	return amount, nil
}

type fakeGovernance struct{}

func (fakeGovernance) FeeHandler(ctx context.Context) (string, error)  { return feeAddr, nil }
func (fakeGovernance) ReserveFund(ctx context.Context) (string, error) { return reserveAddr, nil }

type fakePrices struct {
	prices map[string]number.Amount
}

func (f *fakePrices) Price(ctx context.Context, symbol string) (number.Amount, error) {
	price, ok := f.prices[symbol]
	if !ok {
		return number.Zero, fmt.Errorf("no price for %s", symbol)
	}
	return price, nil
}

type testEnv struct {
	engine    *Engine
	system    *core.System
	positionz core.PositionService

	assets      *memAssets
	positions   *memPositions
	queue       *memQueue
	snapshots   *memSnapshots
	events      *memEvents
	params      *memParams
	checkpoints *memCheckpoints

	tokens    *fakeTokens
	staking   *fakeStaking
	dex       *fakeDex
	rewards   *fakeRewards
	dividends *fakeDividends
	reserve   *fakeReserve
	prices    *fakePrices

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		system: &core.System{
			Address:          engineAddr,
			Admins:           []string{adminAddr},
			Rebalancer:       rebalancerAddr,
			RewardsCaller:    rewardsAddr,
			CollateralSymbol: testCollateral,
			SynthSymbol:      testSynth,
		},
		assets:      newMemAssets(),
		positions:   newMemPositions(),
		queue:       newMemQueue(),
		snapshots:   newMemSnapshots(),
		events:      &memEvents{},
		params:      newMemParams(),
		checkpoints: newMemCheckpoints(),
		tokens:      &fakeTokens{fail: make(map[string]error)},
		staking:     &fakeStaking{},
		rewards:     &fakeRewards{},
		dividends:   &fakeDividends{},
		reserve:     &fakeReserve{},
		prices: &fakePrices{prices: map[string]number.Amount{
			testCollateral: number.Exa,
			testSynth:      number.Exa,
		}},
		clock: time.Unix(42*core.DayLength+3600, 0),
	}
	env.dex = &fakeDex{prices: env.prices}

	ctx := context.Background()
	collateral := &core.Asset{Symbol: testCollateral, IsCollateral: true, Active: true}
	synth := &core.Asset{Symbol: testSynth, IsBorrowable: true, Active: true}
	if err := env.assets.Create(ctx, nil, collateral); err != nil {
		t.Fatal(err)
	}
	if err := env.assets.Create(ctx, nil, synth); err != nil {
		t.Fatal(err)
	}

	positionz := positionservice.New(env.assets, env.snapshots, env.params, env.prices, nil)
	env.positionz = positionz

	env.engine = New(
		env.system,
		nil,
		env.checkpoints,
		env.assets,
		env.positions,
		env.queue,
		env.snapshots,
		env.events,
		env.params,
		positionz,
		env.tokens,
		env.staking,
		env.dex,
		env.rewards,
		env.dividends,
		env.reserve,
		fakeGovernance{},
		env.prices,
		nil,
	)
	env.engine.SetClock(func() time.Time { return env.clock })

	return env
}

// advanceDays moves the clock forward by whole days
func (env *testEnv) advanceDays(n int64) {
	env.clock = env.clock.Add(time.Duration(n*core.DayLength) * time.Second)
}

func (env *testEnv) asset(t *testing.T, symbol string) *core.Asset {
	t.Helper()
	asset, err := env.assets.Find(context.Background(), symbol)
	if err != nil {
		t.Fatal(err)
	}
	return asset
}

func (env *testEnv) position(t *testing.T, address string) *core.Position {
	t.Helper()
	p, err := env.positions.FindByAddress(context.Background(), address)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// checkConservation verifies totalSupply == Σ outstanding debt + badDebt
// for the synth asset.
func (env *testEnv) checkConservation(t *testing.T) {
	t.Helper()

	debt := number.Zero
	for _, p := range env.positions.byID {
		debt = debt.Add(p.Balance(testSynth))
	}

	asset := env.asset(t, testSynth)
	want := debt.Add(asset.BadDebt)
	if asset.TotalSupply.Cmp(want) != 0 {
		t.Fatalf("conservation broken: totalSupply %s, debt+badDebt %s", asset.TotalSupply, want)
	}
}
