package remote

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/rutld-connector/internal/metrics"
	"github.com/and161185/rutld-connector/internal/oplog"
)

var redacted = map[string]bool{ParamAuth: true, "password": true, "passwd": true}

type instrumented struct {
	next Caller
	log  *zap.Logger
	m    *metrics.Metrics
	peer string
}

// Instrument wraps next with structured logging and call metrics. peer names
// the counterpart in log lines ("registrar", "billing").
func Instrument(next Caller, peer string, log *zap.Logger, m *metrics.Metrics) Caller {
	return &instrumented{next: next, log: log, m: m, peer: peer}
}

func (c *instrumented) Call(ctx context.Context, fn string, params map[string]string) (*Response, error) {
	log := oplog.Logger(ctx, c.log).With(zap.String("peer", c.peer), zap.String("func", fn))
	if ce := log.Check(zap.DebugLevel, "request"); ce != nil {
		ce.Write(zap.Any("params", redact(params)))
	}

	start := time.Now()
	resp, err := c.next.Call(ctx, fn, params)
	dur := time.Since(start)
	c.m.ObserveRemoteCall(fn, dur, err)

	if err != nil {
		log.Warn("remote call failed", zap.Duration("dur", dur), zap.Error(err))
		return nil, err
	}
	log.Info("remote call", zap.Duration("dur", dur), zap.Int("elems", len(resp.Elems)))
	return resp, nil
}

func redact(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if redacted[k] {
			v = "***"
		}
		out[k] = v
	}
	return out
}
