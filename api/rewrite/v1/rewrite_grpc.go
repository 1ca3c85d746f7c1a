// Package rewritev1 is the wire contract between rejar and out-of-process
// unit rewriters. The payload travels as a BytesValue; the qualified unit
// name and the classpath travel as request metadata. An empty response
// value means the rewriter left the unit unchanged.
package rewritev1

import (
	context "context"

	grpc "google.golang.org/grpc"
	codes "google.golang.org/grpc/codes"
	metadata "google.golang.org/grpc/metadata"
	status "google.golang.org/grpc/status"
	wrapperspb "google.golang.org/protobuf/types/known/wrapperspb"
)

const _ = grpc.SupportPackageIsVersion9

const (
	UnitRewriter_Rewrite_FullMethodName = "/rejar.v1.UnitRewriter/Rewrite"

	// Binary keys: unit names and classpath entries are UTF-8, which
	// plain ASCII metadata cannot carry.
	MetadataUnit      = "x-rejar-unit-bin"
	MetadataClasspath = "x-rejar-classpath-bin"
)

type UnitRewriterClient interface {
	Rewrite(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type unitRewriterClient struct {
	cc grpc.ClientConnInterface
}

func NewUnitRewriterClient(cc grpc.ClientConnInterface) UnitRewriterClient {
	return &unitRewriterClient{cc}
}

func (c *unitRewriterClient) Rewrite(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, UnitRewriter_Rewrite_FullMethodName, in, out, cOpts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type UnitRewriterServer interface {
	Rewrite(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	mustEmbedUnimplementedUnitRewriterServer()
}

type UnimplementedUnitRewriterServer struct{}

func (UnimplementedUnitRewriterServer) Rewrite(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Rewrite not implemented")
}
func (UnimplementedUnitRewriterServer) mustEmbedUnimplementedUnitRewriterServer() {}

func RegisterUnitRewriterServer(s grpc.ServiceRegistrar, srv UnitRewriterServer) {
	s.RegisterService(&UnitRewriter_ServiceDesc, srv)
}

func _UnitRewriter_Rewrite_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UnitRewriterServer).Rewrite(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: UnitRewriter_Rewrite_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(UnitRewriterServer).Rewrite(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

var UnitRewriter_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "rejar.v1.UnitRewriter",
	HandlerType: (*UnitRewriterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Rewrite",
			Handler:    _UnitRewriter_Rewrite_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rejar/v1/rewrite.proto",
}

// WithUnit attaches the unit name and classpath to an outgoing call.
func WithUnit(ctx context.Context, unit string, classpath []string) context.Context {
	kv := []string{MetadataUnit, unit}
	for _, p := range classpath {
		kv = append(kv, MetadataClasspath, p)
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

// UnitFromContext is the server-side counterpart of WithUnit.
func UnitFromContext(ctx context.Context) (unit string, classpath []string) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}
	if v := md.Get(MetadataUnit); len(v) > 0 {
		unit = v[0]
	}
	classpath = md.Get(MetadataClasspath)
	return unit, classpath
}
