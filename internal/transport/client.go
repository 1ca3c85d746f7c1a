package transport

import (
	rewritev1 "rejar/api/rewrite/v1"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Dial connects to a unit rewriter plugin. Without options the
// connection is plaintext, which is what local plugins expect.
func Dial(target string, opts ...grpc.DialOption) (rewritev1.UnitRewriterClient, *grpc.ClientConn, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	cc, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, nil, err
	}
	return rewritev1.NewUnitRewriterClient(cc), cc, nil
}
