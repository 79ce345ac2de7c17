package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker is a long lived background job.
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker drives a job on a fixed interval until the context ends.
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick runs onWork repeatedly, backing off to ErrDelay after a failure.
func (w *TickWorker) StartTick(ctx context.Context, onWork func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = time.Second
	}

	errDelay := w.ErrDelay
	if errDelay <= 0 {
		errDelay = 3 * time.Second
	}

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := onWork(ctx); err != nil {
				dur = errDelay
			} else {
				dur = delay
			}
		}
	}
}

// IJob a cron scheduled job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true

	job.OnWork()

	job.IsRunning = false
}
