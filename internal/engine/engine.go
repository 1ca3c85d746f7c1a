package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"rejar/internal/archive"
	"rejar/internal/logging"
	"rejar/internal/telemetry"
	"rejar/internal/transform"
)

// DefaultSuffix marks compiled units in jar archives.
const DefaultSuffix = ".class"

// Config is the immutable input of a run.
type Config struct {
	// Loader is forwarded to every transformer call untouched.
	Loader  any
	Sources []string
	Chain   transform.Chain
	// Suffix selects compiled units; DefaultSuffix when empty.
	Suffix string
	// Filter further restricts eligible units; nil admits all.
	Filter *Filter
	Pre    Hook
	Post   Hook
	// CompressionLevel is passed to archive.Create.
	CompressionLevel int
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

func WithMetrics(m *telemetry.Metrics) Option { return func(e *Engine) { e.metrics = m } }

// sourceArchive is the read side of an input archive.
type sourceArchive interface {
	Len() int
	Next() bool
	Entry() archive.Entry
	Err() error
	Close() error
}

// destArchive is the append-only output archive.
type destArchive interface {
	archive.EntryWriter
	Path() string
	Close() error
}

func openArchive(path string) (sourceArchive, error) {
	r, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func createArchive(path string, level int) (destArchive, error) {
	w, err := archive.Create(path, level)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Engine runs one configuration. Engines share no state, so independent
// runs need independent engines and destinations.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	metrics *telemetry.Metrics
	report  Report

	open   func(path string) (sourceArchive, error)
	create func(path string, level int) (destArchive, error)
}

func New(cfg Config, opts ...Option) *Engine {
	if cfg.Suffix == "" {
		cfg.Suffix = DefaultSuffix
	}
	if cfg.Pre == nil {
		cfg.Pre = NopHook
	}
	if cfg.Post == nil {
		cfg.Post = NopHook
	}
	e := &Engine{cfg: cfg, log: logging.L(), open: openArchive, create: createArchive}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Report describes the last run.
func (e *Engine) Report() Report { return e.report }

// Run writes destination from the configured sources. It returns a
// *RunError naming the archive and entry that failed.
func (e *Engine) Run(ctx context.Context, destination string) (err error) {
	e.report = Report{
		Destination: destination,
		Sources:     append([]string(nil), e.cfg.Sources...),
		Started:     time.Now(),
	}
	defer e.finish(&err)

	dst, err := e.create(destination, e.cfg.CompressionLevel)
	if err != nil {
		return &RunError{Op: OpCreate, Path: destination, Err: err}
	}
	defer func() {
		cerr := dst.Close()
		if cerr == nil {
			return
		}
		if err == nil {
			err = &RunError{Op: OpClose, Path: destination, Err: cerr}
			return
		}
		e.log.Warn("closing destination after failure", "destination", destination, "err", cerr)
	}()

	return e.write(ctx, dst)
}

func (e *Engine) write(ctx context.Context, dst destArchive) error {
	if err := e.cfg.Pre.AddResources(ctx, appendOnly{dst}); err != nil {
		return &RunError{Op: OpPreHook, Path: dst.Path(), Err: err}
	}
	for _, src := range e.cfg.Sources {
		if err := e.transformSource(ctx, src, dst); err != nil {
			return err
		}
	}
	if err := e.cfg.Post.AddResources(ctx, appendOnly{dst}); err != nil {
		return &RunError{Op: OpPostHook, Path: dst.Path(), Err: err}
	}
	return nil
}

func (e *Engine) transformSource(ctx context.Context, path string, dst archive.EntryWriter) (err error) {
	src, err := e.open(path)
	if err != nil {
		return &RunError{Op: OpOpen, Path: path, Err: err}
	}
	defer func() {
		cerr := src.Close()
		if cerr == nil {
			return
		}
		if err == nil {
			err = &RunError{Op: OpClose, Path: path, Err: cerr}
			return
		}
		e.log.Warn("closing source after failure", "source", path, "err", cerr)
	}()

	log := e.log.With("source", path)
	log.Debug("processing source", "entries", src.Len())

	for {
		if err := ctx.Err(); err != nil {
			return &RunError{Op: OpCancel, Path: path, Err: err}
		}
		if !src.Next() {
			break
		}
		ent, err := e.transformEntry(ctx, log, path, src.Entry())
		if err != nil {
			return err
		}
		if err := dst.Add(ent); err != nil {
			return &RunError{Op: OpWrite, Path: path, Entry: ent.Name, Err: err}
		}
		if e.metrics != nil {
			e.metrics.BytesOut.Add(float64(len(ent.Payload)))
		}
	}
	if err := src.Err(); err != nil {
		re := &RunError{Op: OpRead, Path: path, Err: err}
		var ee *archive.EntryError
		if errors.As(err, &ee) {
			re.Entry = ee.Name
		}
		return re
	}
	return nil
}

func (e *Engine) transformEntry(ctx context.Context, log *slog.Logger, source string, ent archive.Entry) (archive.Entry, error) {
	e.report.Entries++
	if e.metrics != nil {
		e.metrics.BytesIn.Add(float64(len(ent.Payload)))
	}

	unit, ok := e.eligible(ent.Name)
	if !ok {
		e.count("copied")
		return ent, nil
	}
	e.report.Eligible++
	e.count("transformed")

	before := digest(ent.Payload)
	size := len(ent.Payload)
	out, changed, err := e.cfg.Chain.Apply(ctx, e.cfg.Loader, unit, ent.Payload)
	if err != nil {
		return ent, &RunError{Op: OpTransform, Path: source, Entry: ent.Name, Err: err}
	}
	if changed {
		c := UnitChange{
			Source:     source,
			Entry:      ent.Name,
			Unit:       unit,
			Before:     before,
			After:      digest(out),
			SizeBefore: size,
			SizeAfter:  len(out),
		}
		e.report.Rewritten = append(e.report.Rewritten, c)
		if e.metrics != nil {
			e.metrics.Rewritten.Inc()
		}
		log.Info("unit rewritten", "unit", unit, "before", c.SizeBefore, "after", c.SizeAfter)
	}
	return ent.WithPayload(out), nil
}

// eligible reports whether name is a compiled unit the chain should see
// and returns its qualified name.
func (e *Engine) eligible(name string) (string, bool) {
	if len(e.cfg.Chain) == 0 || !strings.HasSuffix(name, e.cfg.Suffix) {
		return "", false
	}
	unit := strings.TrimSuffix(name, e.cfg.Suffix)
	if !e.cfg.Filter.Match(unit) {
		return "", false
	}
	return unit, true
}

func (e *Engine) count(disposition string) {
	if e.metrics != nil {
		e.metrics.Entries.WithLabelValues(disposition).Inc()
	}
}

func (e *Engine) finish(errp *error) {
	e.report.Duration = time.Since(e.report.Started)
	result := "success"
	if *errp != nil {
		result = "failure"
		e.report.Error = (*errp).Error()
		e.log.Error("rewrite failed", "destination", e.report.Destination, "err", *errp)
	} else {
		e.log.Info("rewrite complete",
			"destination", e.report.Destination,
			"entries", e.report.Entries,
			"eligible", e.report.Eligible,
			"rewritten", len(e.report.Rewritten),
			"duration", e.report.Duration)
	}
	if e.metrics != nil {
		e.metrics.Runs.WithLabelValues(result).Inc()
		e.metrics.Duration.Observe(e.report.Duration.Seconds())
	}
}
