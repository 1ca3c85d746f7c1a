package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFormatRejected marks a payload a transformer refused as structurally
// invalid. It is never retried or skipped.
var ErrFormatRejected = errors.New("format rejected")

// FormatError carries the reason behind a format rejection.
type FormatError struct {
	Unit   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unit %s: %s: %s", e.Unit, ErrFormatRejected, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormatRejected }

// Classpath is the loader context rejar builds from the compile
// classpath. Remote transformers forward it to their plugin.
type Classpath []string

// Transformer rewrites one compiled unit. unit is the qualified name of
// the unit (entry name without suffix) and loader is an opaque context
// supplied by the caller. Returning a nil slice leaves the payload as is.
type Transformer interface {
	Transform(ctx context.Context, loader any, unit string, payload []byte) ([]byte, error)
}

// Func adapts a plain function to Transformer.
type Func func(ctx context.Context, loader any, unit string, payload []byte) ([]byte, error)

func (f Func) Transform(ctx context.Context, loader any, unit string, payload []byte) ([]byte, error) {
	return f(ctx, loader, unit, payload)
}

type named struct {
	Transformer
	name string
}

func (n named) Name() string { return n.name }

func (n named) Close() error {
	if c, ok := n.Transformer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Named labels t for logs and error messages.
func Named(name string, t Transformer) Transformer { return named{Transformer: t, name: name} }

// NameOf returns the label given by Named, or the Go type of t.
func NameOf(t Transformer) string {
	if n, ok := t.(interface{ Name() string }); ok {
		return n.Name()
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", t), "*")
}

// Chain is an ordered list of transformers applied left to right.
type Chain []Transformer

// Apply folds payload through the chain. Each step sees the previous
// step's output; a step returning nil passes its input on. changed
// compares the final bytes with a snapshot of the input, so a step that
// rewrites in place is still reported and an identical copy is not.
func (c Chain) Apply(ctx context.Context, loader any, unit string, payload []byte) (out []byte, changed bool, err error) {
	if len(c) == 0 {
		return payload, false, nil
	}
	before := bytes.Clone(payload)
	out = payload
	for i, t := range c {
		next, err := t.Transform(ctx, loader, unit, out)
		if err != nil {
			return nil, false, fmt.Errorf("transformer #%d (%s): %w", i, NameOf(t), err)
		}
		if next != nil {
			out = next
		}
	}
	return out, !bytes.Equal(out, before), nil
}

// Close releases transformers that hold resources, such as plugin
// connections.
func (c Chain) Close() error {
	var errs []error
	for _, t := range c {
		if cl, ok := t.(io.Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", NameOf(t), err))
			}
		}
	}
	return errors.Join(errs...)
}
