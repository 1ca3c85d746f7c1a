package engine

import (
	"context"
	"fmt"
	"os"

	"rejar/internal/archive"
)

// Hook injects extra entries into the destination, before the first
// source (pre) or after the last one (post). Hooks only see the append
// side of the destination; its lifecycle stays with the engine.
type Hook interface {
	AddResources(ctx context.Context, w archive.EntryWriter) error
}

type HookFunc func(ctx context.Context, w archive.EntryWriter) error

func (f HookFunc) AddResources(ctx context.Context, w archive.EntryWriter) error { return f(ctx, w) }

// NopHook adds nothing.
var NopHook Hook = HookFunc(func(context.Context, archive.EntryWriter) error { return nil })

// Resource is a file on disk to be stored under Name.
type Resource struct {
	Name string
	Path string
}

// ResourceHook adds the given files in order.
func ResourceHook(resources []Resource) Hook {
	return HookFunc(func(_ context.Context, w archive.EntryWriter) error {
		for _, r := range resources {
			payload, err := readResource(r.Path)
			if err != nil {
				return fmt.Errorf("resource %s: %w", r.Name, err)
			}
			if err := w.Add(archive.Entry{Name: r.Name, Payload: payload}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Hooks runs hooks in order, stopping at the first failure.
func Hooks(hooks ...Hook) Hook {
	return HookFunc(func(ctx context.Context, w archive.EntryWriter) error {
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if err := h.AddResources(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

func readResource(path string) (payload []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return archive.ReadPayload(f)
}

// appendOnly hides everything but Add from hooks.
type appendOnly struct{ w archive.EntryWriter }

func (a appendOnly) Add(e archive.Entry) error { return a.w.Add(e) }
