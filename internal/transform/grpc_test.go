package transform

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"rejar/internal/transport"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startPlugin(t *testing.T, fn transport.RewriteFunc, retry RetryPolicy) *GRPCTransformer {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := transport.NewServer(lis, transport.Rewriter(fn))
	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Stop)

	g, err := NewGRPCTransformer("passthrough:///bufnet", time.Second, retry,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewGRPCTransformer: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGRPCTransformer_RoundTrip(t *testing.T) {
	var gotUnit string
	var gotCP []string
	g := startPlugin(t, func(_ context.Context, unit string, cp []string, p []byte) ([]byte, error) {
		gotUnit, gotCP = unit, cp
		return append([]byte{0x01}, p...), nil
	}, RetryPolicy{})

	out, err := g.Transform(context.Background(), Classpath{"a.jar", "b.jar"}, "pkg/A", []byte("body"))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !bytes.Equal(out, []byte("\x01body")) {
		t.Fatalf("out = %q", out)
	}
	if gotUnit != "pkg/A" || len(gotCP) != 2 || gotCP[1] != "b.jar" {
		t.Fatalf("plugin saw unit=%q cp=%v", gotUnit, gotCP)
	}
}

func TestGRPCTransformer_UnicodeNames(t *testing.T) {
	var gotUnit string
	var gotCP []string
	g := startPlugin(t, func(_ context.Context, unit string, cp []string, p []byte) ([]byte, error) {
		gotUnit, gotCP = unit, cp
		return append(p, '!'), nil
	}, RetryPolicy{})

	cp := Classpath{"/opt/bibliothèque/a.jar", "/srv/库/b.jar"}
	out, err := g.Transform(context.Background(), cp, "pkg/Café", []byte("body"))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if string(out) != "body!" {
		t.Fatalf("out = %q", out)
	}
	if gotUnit != "pkg/Café" {
		t.Fatalf("plugin saw unit=%q", gotUnit)
	}
	if len(gotCP) != 2 || gotCP[0] != cp[0] || gotCP[1] != cp[1] {
		t.Fatalf("plugin saw cp=%v", gotCP)
	}
}

func TestGRPCTransformer_EmptyResponseMeansUnchanged(t *testing.T) {
	g := startPlugin(t, func(context.Context, string, []string, []byte) ([]byte, error) {
		return nil, nil
	}, RetryPolicy{})
	out, err := g.Transform(context.Background(), nil, "pkg/A", []byte("body"))
	if err != nil || out != nil {
		t.Fatalf("got %q, %v", out, err)
	}
}

func TestGRPCTransformer_RejectBecomesFormatError(t *testing.T) {
	g := startPlugin(t, func(context.Context, string, []string, []byte) ([]byte, error) {
		return nil, transport.Reject("not a class file")
	}, RetryPolicy{Attempts: 3})
	_, err := g.Transform(context.Background(), nil, "pkg/A", []byte("body"))
	if !errors.Is(err, ErrFormatRejected) {
		t.Fatalf("want ErrFormatRejected, got %v", err)
	}
}

func TestGRPCTransformer_RetriesTransientFailures(t *testing.T) {
	var calls int32
	g := startPlugin(t, func(_ context.Context, _ string, _ []string, p []byte) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, status.Error(codes.Unavailable, "warming up")
		}
		return append(p, '!'), nil
	}, RetryPolicy{Attempts: 1, Backoff: time.Millisecond})

	out, err := g.Transform(context.Background(), nil, "pkg/A", []byte("x"))
	if err != nil || string(out) != "x!" {
		t.Fatalf("got %q, %v", out, err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestGRPCTransformer_InternalErrorNotRetried(t *testing.T) {
	var calls int32
	g := startPlugin(t, func(context.Context, string, []string, []byte) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("plugin crashed")
	}, RetryPolicy{Attempts: 2})
	if _, err := g.Transform(context.Background(), nil, "pkg/A", []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls = %d", calls)
	}
}
