package transport

import (
	"context"
	"net"

	rewritev1 "rejar/api/rewrite/v1"
	"rejar/internal/logging"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server hosts a unit rewriter plugin.
type Server struct {
	grpc *grpc.Server
	lis  net.Listener
}

func StartServer(addr string, impl rewritev1.UnitRewriterServer) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewServer(lis, impl), nil
}

// NewServer serves impl on an existing listener.
func NewServer(lis net.Listener, impl rewritev1.UnitRewriterServer) *Server {
	s := &Server{
		grpc: grpc.NewServer(),
		lis:  lis,
	}
	rewritev1.RegisterUnitRewriterServer(s.grpc, impl)
	return s
}

func (s *Server) Addr() net.Addr { return s.lis.Addr() }

func (s *Server) Serve() error {
	return s.grpc.Serve(s.lis)
}
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// RewriteFunc is the plugin-side shape of a transformer.
type RewriteFunc func(ctx context.Context, unit string, classpath []string, payload []byte) ([]byte, error)

type rewriter struct {
	rewritev1.UnimplementedUnitRewriterServer
	fn RewriteFunc
}

// Reject reports a payload as structurally invalid. The client side
// turns it into a format rejection that aborts the run.
func Reject(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// Rewriter exposes fn as a UnitRewriter service.
func Rewriter(fn RewriteFunc) rewritev1.UnitRewriterServer {
	return &rewriter{fn: fn}
}

func (r *rewriter) Rewrite(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	unit, classpath := rewritev1.UnitFromContext(ctx)
	out, err := r.fn(ctx, unit, classpath, in.GetValue())
	if err != nil {
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		logging.L().Error("rewrite failed", "unit", unit, "err", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(out), nil
}
