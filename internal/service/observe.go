package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/errs"
	"github.com/and161185/rutld-connector/internal/oplog"
)

// run executes one entry point with an operation ID, structured logging,
// panic recovery and an operation metric.
func (s *DomainServiceImpl) run(ctx context.Context, op string, fields []zap.Field, fn func(context.Context) error) (err error) {
	if _, ok := oplog.OpIDFromCtx(ctx); !ok {
		ctx, _ = oplog.New(ctx)
	}
	log := oplog.Logger(ctx, s.log).With(append([]zap.Field{zap.String("operation", op)}, fields...)...)
	start := time.Now()
	log.Info("start")

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic", zap.Any("reason", r), zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
		s.m.ObserveOperation(op, err)
		if err != nil {
			log.Error("failed",
				zap.Duration("dur", time.Since(start)),
				zap.String("key", errs.Key(err)),
				zap.Error(err),
			)
			return
		}
		log.Info("done", zap.Duration("dur", time.Since(start)))
	}()
	return fn(ctx)
}

func itemFields(id int64) []zap.Field { return []zap.Field{zap.Int64("item", id)} }
