package payee

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loans/core"
	"loans/pkg/number"

	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	checkpointKey = "payee:outputs_checkpoint"
	limit         = 500
)

// Engine the ledger operations the payee dispatches into.
type Engine interface {
	DepositAndBorrow(ctx context.Context, caller string, deposit, nativeValue number.Amount, borrowSymbol string, borrowAmount number.Amount) error
	ReturnAsset(ctx context.Context, caller, symbol string, amount number.Amount, repay bool) error
	WithdrawCollateral(ctx context.Context, caller string, amount number.Amount) error
	Liquidate(ctx context.Context, caller, owner string) error
	RetireBadDebt(ctx context.Context, caller, symbol string, value number.Amount) error
	RaisePrice(ctx context.Context, caller string, required number.Amount) error
	LowerPrice(ctx context.Context, caller string, required number.Amount) error
}

// action is the {method, params} payload carried in an output memo.
// Amounts the operation needs beyond the transferred value travel in
// params; the transferred value itself is taken from the output.
type action struct {
	Method string `json:"method" valid:"required"`
	Params struct {
		Symbol  string          `json:"symbol"`
		Amount  decimal.Decimal `json:"amount"`
		Address string          `json:"address"`
	} `json:"params"`
}

// Payee consumes transfer outputs in arrival order and applies the
// operation named in each memo to the ledger engine. A transfer whose
// action cannot be applied is refunded to its sender before the output
// is consumed; progress is tracked with a durable checkpoint so a
// restart resumes where the previous run stopped.
type Payee struct {
	system      *core.System
	checkpoints core.CheckpointStore
	outputStore core.OutputStore
	engine      Engine
	tokenz      core.TokenService
}

// New new payee worker
func New(
	system *core.System,
	checkpoints core.CheckpointStore,
	outputStore core.OutputStore,
	engine Engine,
	tokenz core.TokenService,
) *Payee {
	return &Payee{
		system:      system,
		checkpoints: checkpoints,
		outputStore: outputStore,
		engine:      engine,
		tokenz:      tokenz,
	}
}

// Run run worker
func (w *Payee) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "payee")
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := w.run(ctx); err == nil {
				dur = 100 * time.Millisecond
			} else {
				dur = 500 * time.Millisecond
			}
		}
	}
}

func (w *Payee) run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	cursor, err := w.checkpoints.GetInt64(ctx, checkpointKey)
	if err != nil {
		log.WithError(err).Errorln("checkpoints.GetInt64")
		return err
	}

	outputs, err := w.outputStore.List(ctx, uint64(cursor), limit)
	if err != nil {
		log.WithError(err).Errorln("outputStore.List")
		return err
	}

	if len(outputs) == 0 {
		return errors.New("no more outputs")
	}

	for _, output := range outputs {
		if err := w.handleOutput(ctx, output); err != nil {
			return err
		}

		if err := w.checkpoints.Save(ctx, checkpointKey, int64(output.ID)); err != nil {
			log.WithError(err).Errorln("checkpoints.Save:", output.ID)
			return err
		}
	}

	return nil
}

func (w *Payee) handleOutput(ctx context.Context, output *core.Output) error {
	log := logger.FromContext(ctx).WithField("output", output.TraceID)
	ctx = logger.WithContext(ctx, log)

	if output.Sender == "" {
		return nil
	}

	var act action
	if err := json.Unmarshal(decodeMemo(output.Memo), &act); err != nil {
		log.WithError(err).Debugln("refund output with opaque memo")
		return w.refund(ctx, output)
	}

	if _, err := govalidator.ValidateStruct(act); err != nil {
		log.WithError(err).Debugln("refund output with invalid action")
		return w.refund(ctx, output)
	}

	err := w.applyAction(ctx, output, act)

	// rejected operations refund the transferred value and consume the
	// output; transient failures retry it
	var code core.ErrorCode
	if errors.As(err, &code) {
		log.WithError(err).Infoln("action rejected:", act.Method)
		return w.refund(ctx, output)
	}

	return err
}

func (w *Payee) applyAction(ctx context.Context, output *core.Output, act action) error {
	amount, err := number.FromDecimal(act.Params.Amount)
	if err != nil {
		return fmt.Errorf("malformed amount %s: %w", act.Params.Amount, core.ErrInvalidAmount)
	}

	switch act.Method {
	case "deposit":
		if output.Symbol != w.system.CollateralSymbol {
			return fmt.Errorf("deposit with wrong collateral %s: %w", output.Symbol, core.ErrInvalidArgument)
		}
		return w.engine.DepositAndBorrow(ctx, output.Sender, output.Amount, number.Zero, act.Params.Symbol, amount)
	case "stake":
		return w.engine.DepositAndBorrow(ctx, output.Sender, number.Zero, output.Amount, act.Params.Symbol, amount)
	case "borrow":
		return w.engine.DepositAndBorrow(ctx, output.Sender, number.Zero, number.Zero, act.Params.Symbol, amount)
	case "repay":
		return w.engine.ReturnAsset(ctx, output.Sender, output.Symbol, output.Amount, true)
	case "return":
		return w.engine.ReturnAsset(ctx, output.Sender, output.Symbol, output.Amount, false)
	case "withdraw":
		return w.engine.WithdrawCollateral(ctx, output.Sender, amount)
	case "liquidate":
		return w.engine.Liquidate(ctx, output.Sender, act.Params.Address)
	case "retire":
		return w.engine.RetireBadDebt(ctx, output.Sender, output.Symbol, output.Amount)
	case "raise_price":
		return w.engine.RaisePrice(ctx, output.Sender, amount)
	case "lower_price":
		return w.engine.LowerPrice(ctx, output.Sender, amount)
	default:
		return fmt.Errorf("unknown method %s: %w", act.Method, core.ErrInvalidArgument)
	}
}

// refund sends a consumed output's value back to its sender. Value kept
// by an applied operation never reaches here.
func (w *Payee) refund(ctx context.Context, output *core.Output) error {
	if output.Amount.IsZero() {
		return nil
	}

	log := logger.FromContext(ctx)

	if err := w.tokenz.Transfer(ctx, output.Symbol, output.Sender, output.Amount); err != nil {
		log.WithError(err).Errorln("refund transfer")
		return err
	}

	log.Infoln("refunded", output.Amount, output.Symbol, "to", output.Sender)
	return nil
}

func decodeMemo(memo string) []byte {
	if b, err := base64.StdEncoding.DecodeString(memo); err == nil {
		return b
	}

	if b, err := base64.URLEncoding.DecodeString(memo); err == nil {
		return b
	}

	return []byte(memo)
}
