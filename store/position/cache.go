package position

import (
	"context"
	"fmt"

	"loans/core"
	"loans/pkg/number"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache wraps a position store with a read-through LRU cache keyed by
// address. Writes go straight through; balances are reloaded on miss.
func Cache(store core.PositionStore) core.PositionStore {
	return &cachePositionStore{
		PositionStore: store,
		cache:         gcache.New(2048).LRU().Build(),
		sf:            &singleflight.Group{},
	}
}

type cachePositionStore struct {
	core.PositionStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cachePositionStore) FindByAddress(ctx context.Context, address string) (*core.Position, error) {
	if v, err := s.cache.Get(s.addressKey(address)); err == nil {
		if position, ok := v.(*core.Position); ok {
			return position, nil
		}
	}

	v, err, _ := s.sf.Do(s.addressKey(address), func() (interface{}, error) {
		position, err := s.PositionStore.FindByAddress(ctx, address)
		if err != nil {
			return nil, err
		}
		s.cache.Set(s.addressKey(address), position)
		return position, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Position), nil
}

func (s *cachePositionStore) GetOrCreate(ctx context.Context, address string) (*core.Position, error) {
	position, err := s.PositionStore.GetOrCreate(ctx, address)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.addressKey(address), position)
	return position, nil
}

func (s *cachePositionStore) SetBalance(ctx context.Context, tx *db.DB, positionID uint64, symbol string, amount number.Amount) error {
	if err := s.PositionStore.SetBalance(ctx, tx, positionID, symbol, amount); err != nil {
		return err
	}
	// balances changed; drop any cached copy of the owning position
	s.cache.Purge()
	return nil
}

func (s *cachePositionStore) addressKey(address string) string {
	return fmt.Sprintf("position:address:%s", address)
}
