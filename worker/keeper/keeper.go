package keeper

import (
	"context"
	"time"

	"loans/core"
	"loans/service/engine"
	"loans/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Keeper drives the day clock. Each tick it rolls the ledger over to a
// new day epoch when one has started, then walks the reward and
// dividend distributions until both report done for that day.
type Keeper struct {
	worker.BaseJob
	system *core.System
	engine *engine.Engine
}

// New new keeper worker
func New(system *core.System, engine *engine.Engine, location string) *Keeper {
	keeper := Keeper{
		system: system,
		engine: engine,
	}

	l, _ := time.LoadLocation(location)
	keeper.Cron = cron.New(cron.WithLocation(l))
	keeper.Cron.AddFunc("@every 10s", keeper.Run)
	keeper.OnWork = func() error {
		return keeper.onWork(context.Background())
	}

	return &keeper
}

func (k *Keeper) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "keeper")
	ctx = logger.WithContext(ctx, log)

	caller := k.system.RewardsCaller

	day, isNewDay, err := k.engine.CheckForNewDay(ctx, caller)
	if err != nil {
		log.WithError(err).Errorln("check for new day")
		return err
	}

	done, err := k.engine.CheckDistributions(ctx, caller, day, isNewDay)
	for !done && err == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err = k.engine.CheckDistributions(ctx, caller, day, false)
	}
	if err != nil {
		log.WithError(err).Errorln("check distributions")
		return err
	}

	return nil
}
