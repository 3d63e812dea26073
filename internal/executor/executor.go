package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/internal/model"
)

const DefaultTTL = 3600

// RecordWriter is the write side of the DNS provider gateway.
type RecordWriter interface {
	CreateRecord(ctx context.Context, zoneID string, record model.Record) (*model.Record, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, record model.Record) (*model.Record, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
}

// Executor applies change plan actions against the gateway.
type Executor struct {
	logger     *zap.Logger
	gateway    RecordWriter
	defaultTTL int
}

// New creates an Executor. A non-positive defaultTTL falls back to DefaultTTL.
func New(logger *zap.Logger, gateway RecordWriter, defaultTTL int) *Executor {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Executor{logger: logger, gateway: gateway, defaultTTL: defaultTTL}
}

// Execute applies actions strictly in order and returns one result per action,
// in the same order. A failing action never stops the remaining ones.
func (e *Executor) Execute(ctx context.Context, actions []model.Action, domain, zoneID string) []model.ExecutionResult {
	e.logger.Info("Executing actions",
		zap.String("domain", domain),
		zap.String("zone_id", zoneID),
		zap.Int("count", len(actions)))

	results := make([]model.ExecutionResult, 0, len(actions))
	failed := 0
	for i, action := range actions {
		res := e.apply(ctx, i, action, domain, zoneID)
		if !res.Success {
			failed++
		}
		results = append(results, res)
	}

	e.logger.Info("Completed actions",
		zap.String("domain", domain),
		zap.Int("total", len(results)),
		zap.Int("failed", failed))
	return results
}

func (e *Executor) apply(ctx context.Context, index int, action model.Action, domain, zoneID string) (res model.ExecutionResult) {
	res = model.ExecutionResult{Action: action.Type, Record: action.Record}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Action panicked",
				zap.Int("index", index),
				zap.String("action", string(action.Type)),
				zap.Any("panic", r))
			res.Success = false
			res.Result = nil
			res.Error = fmt.Sprintf("internal error: %v", r)
		}
	}()

	normalized := model.Action{Type: action.Type, Record: action.Record.Normalize(domain, e.defaultTTL)}
	op, err := normalized.Operation()
	if err != nil {
		return e.fail(res, index, err)
	}

	e.logger.Debug("Executing action",
		zap.Int("index", index),
		zap.String("action", string(action.Type)),
		zap.String("type", string(normalized.Record.Type)),
		zap.String("name", normalized.Record.Name))

	switch op := op.(type) {
	case model.CreateOperation:
		res.Result, err = e.gateway.CreateRecord(ctx, zoneID, op.Record)
	case model.UpdateOperation:
		res.Result, err = e.gateway.UpdateRecord(ctx, zoneID, op.RecordID, op.Record)
	case model.DeleteOperation:
		err = e.gateway.DeleteRecord(ctx, zoneID, op.RecordID)
	default:
		err = fmt.Errorf("unknown action: %s", op.ActionType())
	}
	if err != nil {
		res.Result = nil
		return e.fail(res, index, err)
	}

	res.Success = true
	return res
}

func (e *Executor) fail(res model.ExecutionResult, index int, err error) model.ExecutionResult {
	e.logger.Warn("Action failed",
		zap.Int("index", index),
		zap.String("action", string(res.Action)),
		zap.String("name", res.Record.Name),
		zap.Error(err))
	res.Success = false
	res.Error = err.Error()
	return res
}
