package engine

import (
	"context"
	"fmt"

	"loans/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// CheckForNewDay advances the current day and takes a snapshot at most
// once per distinct day, only while day <= continuousRewardDay. It is
// idempotent within the same day. Restricted to the rewards
// collaborator like the distribution handshake it gates.
func (e *Engine) CheckForNewDay(ctx context.Context, caller string) (int64, bool, error) {
	if !e.system.IsRewardsCaller(caller) && !e.system.IsAdmin(caller) {
		return 0, false, core.ErrOperationForbidden
	}

	e.mux.Lock()
	defer e.mux.Unlock()

	return e.checkForNewDay(ctx)
}

func (e *Engine) checkForNewDay(ctx context.Context) (int64, bool, error) {
	log := logger.FromContext(ctx).WithField("op", "checkForNewDay")

	params, err := e.paramStore.Load(ctx)
	if err != nil {
		return 0, false, err
	}

	day := e.day(params)

	current, err := e.checkpoints.GetInt64(ctx, currentDayKey)
	if err != nil {
		return 0, false, err
	}

	if day <= current {
		// bootstrap: make sure the current day's record exists
		if day <= params.ContinuousRewardDay {
			if _, err := e.snapshotStore.Find(ctx, day); gorm.IsRecordNotFoundError(err) {
				if err := e.tx(func(tx *db.DB) error {
					return e.takeSnapshot(ctx, tx, day)
				}); err != nil {
					return 0, false, err
				}
			}
		}
		return current, false, nil
	}

	if err := e.tx(func(tx *db.DB) error {
		if day <= params.ContinuousRewardDay {
			if err := e.takeSnapshot(ctx, tx, day); err != nil {
				return err
			}
		}

		return e.checkpoints.Save(ctx, currentDayKey, day)
	}); err != nil {
		return 0, false, err
	}

	log.Infoln("new day", day)
	return day, true, nil
}

// takeSnapshot opens the record for day, folding the previous day's
// nonzero transitions into the running count. The previous snapshot is
// immutable from here on.
func (e *Engine) takeSnapshot(ctx context.Context, tx *db.DB, day int64) error {
	snapshot := &core.Snapshot{Day: day}

	prev, err := e.snapshotStore.Find(ctx, -1)
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return err
		}
	} else {
		snapshot.TotalMiningDebt = prev.TotalMiningDebt
		snapshot.NonzeroCount = prev.NonzeroCount + int64(len(prev.AddNonzero)) - int64(len(prev.RemoveNonzero))
	}

	if err := e.snapshotStore.Create(ctx, tx, snapshot); err != nil {
		return err
	}

	return e.emit(ctx, tx, &core.Event{
		Type:  core.EventSnapshot,
		Actor: e.system.Address,
		Note:  fmt.Sprintf("snapshot taken for day %d", day),
	})
}

// CheckDistributions two-phase handshake with the rewards and
// dividends collaborators. On a new day both flags reset; subsequent
// calls drive each distribute() to completion. Returns true once both
// are done for the current day.
func (e *Engine) CheckDistributions(ctx context.Context, caller string, day int64, isNewDay bool) (bool, error) {
	if !e.system.IsRewardsCaller(caller) {
		return false, core.ErrOperationForbidden
	}

	e.mux.Lock()
	defer e.mux.Unlock()

	log := logger.FromContext(ctx).WithField("op", "checkDistributions").WithField("day", day)

	if isNewDay {
		if err := e.checkpoints.Save(ctx, rewardsDoneKey, false); err != nil {
			return false, err
		}
		if err := e.checkpoints.Save(ctx, dividendsDoneKey, false); err != nil {
			return false, err
		}
		return false, nil
	}

	rewardsDone, err := e.checkpoints.GetBool(ctx, rewardsDoneKey)
	if err != nil {
		return false, err
	}
	if !rewardsDone {
		done, err := e.rewardz.Distribute(ctx)
		if err != nil {
			return false, err
		}
		if done {
			if err := e.checkpoints.Save(ctx, rewardsDoneKey, true); err != nil {
				return false, err
			}
		}
		log.Debugln("rewards distribute, done:", done)
		return false, nil
	}

	dividendsDone, err := e.checkpoints.GetBool(ctx, dividendsDoneKey)
	if err != nil {
		return false, err
	}
	if !dividendsDone {
		done, err := e.dividendz.Distribute(ctx)
		if err != nil {
			return false, err
		}
		if !done {
			return false, nil
		}
		if err := e.checkpoints.Save(ctx, dividendsDoneKey, true); err != nil {
			return false, err
		}
	}

	return true, nil
}
