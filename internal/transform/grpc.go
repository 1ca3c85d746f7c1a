package transform

import (
	"context"
	"fmt"
	"time"

	rewritev1 "rejar/api/rewrite/v1"
	"rejar/internal/logging"
	"rejar/internal/transport"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RetryPolicy bounds retries of transient plugin failures. Attempts is
// the number of extra tries after the first call.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// GRPCTransformer forwards units to a UnitRewriter plugin.
type GRPCTransformer struct {
	target  string
	conn    *grpc.ClientConn
	svc     rewritev1.UnitRewriterClient
	timeout time.Duration
	retry   RetryPolicy
}

func NewGRPCTransformer(target string, timeout time.Duration, retry RetryPolicy, opts ...grpc.DialOption) (*GRPCTransformer, error) {
	svc, conn, err := transport.Dial(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &GRPCTransformer{
		target:  target,
		conn:    conn,
		svc:     svc,
		timeout: timeout,
		retry:   retry,
	}, nil
}

func (g *GRPCTransformer) Transform(ctx context.Context, loader any, unit string, payload []byte) ([]byte, error) {
	cp, _ := loader.(Classpath)
	ctx = rewritev1.WithUnit(ctx, unit, cp)

	var lastErr error
	for attempt := 0; attempt <= g.retry.Attempts; attempt++ {
		if attempt > 0 && g.retry.Backoff > 0 {
			select {
			case <-time.After(g.retry.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		out, err := g.call(ctx, payload)
		if err == nil {
			if len(out.GetValue()) == 0 {
				return nil, nil
			}
			return out.GetValue(), nil
		}
		switch status.Code(err) {
		case codes.InvalidArgument:
			return nil, &FormatError{Unit: unit, Reason: status.Convert(err).Message()}
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
			lastErr = err
			logging.L().Warn("rewriter call failed, retrying", "target", g.target, "unit", unit, "attempt", attempt+1, "err", err)
			continue
		default:
			return nil, fmt.Errorf("rewriter %s: %w", g.target, err)
		}
	}
	return nil, fmt.Errorf("rewriter %s: giving up after %d attempts: %w", g.target, g.retry.Attempts+1, lastErr)
}

func (g *GRPCTransformer) call(ctx context.Context, payload []byte) (*wrapperspb.BytesValue, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.svc.Rewrite(ctx, wrapperspb.Bytes(payload))
}

func (g *GRPCTransformer) Close() error {
	if g.conn != nil {
		return g.conn.Close()
	}
	return nil
}
