package transform

import (
	"context"
	"fmt"
	"time"
)

// Spec describes one configured transformer.
type Spec struct {
	Name    string
	Type    string // "grpc" or "stdio"
	Address string
	Command []string
	Timeout time.Duration
	Retry   RetryPolicy
}

// Factory builds a transformer from its spec.
type Factory func(ctx context.Context, s Spec) (Transformer, error)

var reg = map[string]Factory{}

// Register makes a transformer type available to Build.
func Register(kind string, f Factory) { reg[kind] = f }

// Build instantiates specs in order. On failure the transformers built so
// far are closed.
func Build(ctx context.Context, specs []Spec) (Chain, error) {
	chain := make(Chain, 0, len(specs))
	for _, s := range specs {
		f, ok := reg[s.Type]
		if !ok {
			_ = chain.Close()
			return nil, fmt.Errorf("unsupported transformer type %q for %s", s.Type, s.Name)
		}
		t, err := f(ctx, s)
		if err != nil {
			_ = chain.Close()
			return nil, fmt.Errorf("transformer %s: %w", s.Name, err)
		}
		name := s.Name
		if name == "" {
			name = s.Type
		}
		chain = append(chain, Named(name, t))
	}
	return chain, nil
}

func init() {
	Register("grpc", func(_ context.Context, s Spec) (Transformer, error) {
		if s.Address == "" {
			return nil, fmt.Errorf("grpc transformer needs an address")
		}
		return NewGRPCTransformer(s.Address, s.Timeout, s.Retry)
	})
	Register("stdio", func(_ context.Context, s Spec) (Transformer, error) {
		return NewStdioTransformer(s.Command, s.Timeout)
	})
}
