package sink

import (
	"fmt"

	"rejar/internal/engine"
)

// Adapter publishes run reports.
type Adapter interface {
	Configure(any) error      // driver-specific config ⇒ struct
	Push(engine.Report) error // publish one report
	Close() error             // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
