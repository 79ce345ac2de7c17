package checkpoint

import (
	"context"

	"loans/core"

	"github.com/fox-one/pkg/property"
)

type checkpointStore struct {
	property property.Store
}

// New checkpoint store over the shared property table
func New(property property.Store) core.CheckpointStore {
	return &checkpointStore{property: property}
}

func (s *checkpointStore) GetInt64(ctx context.Context, key string) (int64, error) {
	v, err := s.property.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// GetBool booleans are stored as 0/1
func (s *checkpointStore) GetBool(ctx context.Context, key string) (bool, error) {
	v, err := s.property.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return v.Int64() != 0, nil
}

func (s *checkpointStore) Save(ctx context.Context, key string, value interface{}) error {
	if b, ok := value.(bool); ok {
		var i int64
		if b {
			i = 1
		}
		value = i
	}
	return s.property.Save(ctx, key, value)
}
