// rejar/sink/stdout/driver.go
package stdout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"rejar/internal/engine"
	"rejar/sink"
)

/* ────────── public config ────────── */
type Config struct {
	Format string    `yaml:"format"` // text (default) | yaml
	Out    io.Writer `yaml:"-"`      // nil → os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config
	mu  sync.Mutex // serializes writes to Out
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	switch c.Format {
	case "", "text", "yaml":
	default:
		return fmt.Errorf("stdout-sink: unknown format %q", c.Format)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(r engine.Report) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.Format == "yaml" {
		enc := yaml.NewEncoder(d.cfg.Out)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	for _, c := range r.Rewritten {
		if _, err := fmt.Fprintf(d.cfg.Out, "Transform : %s (%d → %d bytes)\n", c.Unit, c.SizeBefore, c.SizeAfter); err != nil {
			return err
		}
	}
	status := "ok"
	if !r.Succeeded() {
		status = "FAILED: " + r.Error
	}
	_, err := fmt.Fprintf(d.cfg.Out, "[rejar] %s: %d entries, %d eligible, %d rewritten in %s – %s\n",
		r.Destination, r.Entries, r.Eligible, len(r.Rewritten), r.Duration.Round(time.Millisecond), status)
	return err
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
