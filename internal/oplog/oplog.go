// Package oplog carries the operation ID of an entry point invocation
// through context so every log line of one run can be correlated.
package oplog

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type ctxKey string

const opIDKey ctxKey = "rutld.opID"

// WithOpID stores the operation ID in context.
func WithOpID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, opIDKey, id)
}

// New starts an operation with a fresh V4 ID.
func New(ctx context.Context) (context.Context, uuid.UUID) {
	id := uuid.Must(uuid.NewV4())
	return WithOpID(ctx, id), id
}

// OpIDFromCtx fetches the operation ID from context.
func OpIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	v := ctx.Value(opIDKey)
	if v == nil {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Logger returns log annotated with the context's operation ID, if any.
func Logger(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id, ok := OpIDFromCtx(ctx); ok {
		return log.With(zap.Stringer("op", id))
	}
	return log
}
