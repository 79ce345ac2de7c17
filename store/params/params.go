package params

import (
	"context"
	"fmt"
	"time"

	"loans/core"
	"loans/pkg/number"

	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cast"
)

// Param one named global parameter in string form
type Param struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Name      string    `sql:"size:64;unique_index:name_idx" json:"name"`
	Value     string    `sql:"size:128" json:"value"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type paramStore struct {
	db *db.DB
}

// New new param store
func New(db *db.DB) core.ParamStore {
	return &paramStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Param{})
		if err := tx.AutoMigrate(Param{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *paramStore) Load(ctx context.Context) (*core.Params, error) {
	var rows []*Param
	if err := s.db.View().Find(&rows).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}

	params := core.DefaultParams()

	amounts := map[string]*number.Amount{
		core.ParamLockingRatio:      &params.LockingRatio,
		core.ParamLiquidationRatio:  &params.LiquidationRatio,
		core.ParamMiningRatio:       &params.MiningRatio,
		core.ParamOriginationFee:    &params.OriginationFee,
		core.ParamRedemptionFee:     &params.RedemptionFee,
		core.ParamRetirementBonus:   &params.RetirementBonus,
		core.ParamLiquidationReward: &params.LiquidationReward,
		core.ParamNewLoanMinimum:    &params.NewLoanMinimum,
		core.ParamMinMiningDebt:     &params.MinMiningDebt,
		core.ParamMaxRetirePercent:  &params.MaxRetirePercent,
	}

	for name, target := range amounts {
		if raw, ok := values[name]; ok && raw != "" {
			amount, err := number.FromString(raw)
			if err != nil {
				return nil, fmt.Errorf("params: %s: %w", name, err)
			}
			*target = amount
		}
	}

	ints := map[string]*int64{
		core.ParamRedeemBatchSize:     &params.RedeemBatchSize,
		core.ParamContinuousRewardDay: &params.ContinuousRewardDay,
		core.ParamTimeOffset:          &params.TimeOffset,
	}

	for name, target := range ints {
		if raw, ok := values[name]; ok && raw != "" {
			*target = cast.ToInt64(raw)
		}
	}

	return params, nil
}

func (s *paramStore) Save(ctx context.Context, params *core.Params) error {
	values := map[string]string{
		core.ParamLockingRatio:        params.LockingRatio.String(),
		core.ParamLiquidationRatio:    params.LiquidationRatio.String(),
		core.ParamMiningRatio:         params.MiningRatio.String(),
		core.ParamOriginationFee:      params.OriginationFee.String(),
		core.ParamRedemptionFee:       params.RedemptionFee.String(),
		core.ParamRetirementBonus:     params.RetirementBonus.String(),
		core.ParamLiquidationReward:   params.LiquidationReward.String(),
		core.ParamNewLoanMinimum:      params.NewLoanMinimum.String(),
		core.ParamMinMiningDebt:       params.MinMiningDebt.String(),
		core.ParamMaxRetirePercent:    params.MaxRetirePercent.String(),
		core.ParamRedeemBatchSize:     cast.ToString(params.RedeemBatchSize),
		core.ParamContinuousRewardDay: cast.ToString(params.ContinuousRewardDay),
		core.ParamTimeOffset:          cast.ToString(params.TimeOffset),
	}

	for name, value := range values {
		if err := s.save(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (s *paramStore) Set(ctx context.Context, name, value string) error {
	switch name {
	case core.ParamLockingRatio, core.ParamLiquidationRatio, core.ParamMiningRatio,
		core.ParamOriginationFee, core.ParamRedemptionFee, core.ParamRetirementBonus,
		core.ParamLiquidationReward, core.ParamNewLoanMinimum, core.ParamMinMiningDebt,
		core.ParamMaxRetirePercent:
		if _, err := number.FromString(value); err != nil {
			return fmt.Errorf("params: %s: %w", name, err)
		}
	case core.ParamRedeemBatchSize, core.ParamContinuousRewardDay, core.ParamTimeOffset:
		if _, err := cast.ToInt64E(value); err != nil {
			return fmt.Errorf("params: %s: %w", name, err)
		}
	default:
		return fmt.Errorf("params: unknown parameter %q: %w", name, core.ErrInvalidArgument)
	}

	return s.save(name, value)
}

func (s *paramStore) save(name, value string) error {
	var param Param
	if err := s.db.Update().
		Where(Param{Name: name}).
		Assign(Param{Value: value, UpdatedAt: time.Now()}).
		FirstOrCreate(&param).Error; err != nil {
		return err
	}
	return nil
}
