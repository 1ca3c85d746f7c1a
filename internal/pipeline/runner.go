package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"rejar/internal/engine"
	"rejar/internal/logging"
	"rejar/internal/spec"
	"rejar/internal/telemetry"
	"rejar/internal/transform"
	"rejar/sink"
)

// KeptPrefix names the original artifact kept aside by a replace run.
const KeptPrefix = "notransform-"

// defaultMode applies to a destination that did not exist before the run.
const defaultMode os.FileMode = 0o644

// Runner owns everything around one engine run: the transformer chain,
// the temp file, the final rename and report publishing.
type Runner struct {
	cfg       spec.File
	engineCfg engine.Config
	chain     transform.Chain
	sinks     []sink.Adapter
	metrics   *telemetry.Metrics
}

func NewRunner(cfg spec.File) *Runner {
	return &Runner{cfg: cfg, metrics: telemetry.NewMetrics()}
}

func (r *Runner) AddSink(s sink.Adapter) { r.sinks = append(r.sinks, s) }

// Target is the path that holds the result after a successful run.
func (r *Runner) Target() string {
	if r.cfg.Replace {
		return r.cfg.Sources[0]
	}
	return r.cfg.Destination
}

// Run rewrites into a temp file beside the target and moves it into place
// only when the engine succeeded.
func (r *Runner) Run(ctx context.Context) (engine.Report, error) {
	target := r.Target()
	tmp, err := os.CreateTemp(filepath.Dir(target), ".rejar-*.tmp")
	if err != nil {
		return engine.Report{}, fmt.Errorf("temp destination: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	e := engine.New(r.engineCfg, engine.WithMetrics(r.metrics))
	runErr := e.Run(ctx, tmpPath)
	if runErr == nil {
		runErr = r.install(tmpPath, target)
	}
	if runErr != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logging.L().Warn("removing temp destination", "path", tmpPath, "err", rmErr)
		}
	}

	rep := e.Report()
	rep.Destination = target
	if runErr != nil && rep.Error == "" {
		rep.Error = runErr.Error()
	}

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	for _, s := range r.sinks {
		if err := s.Push(rep); err != nil {
			errs = append(errs, fmt.Errorf("publish report: %w", err))
		}
	}
	if path := r.cfg.Metrics.Textfile; path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, fmt.Errorf("metrics textfile: %w", err))
		}
	}
	return rep, errors.Join(errs...)
}

func (r *Runner) install(tmpPath, target string) error {
	if err := os.Chmod(tmpPath, installMode(target)); err != nil {
		return fmt.Errorf("destination mode: %w", err)
	}
	if !r.cfg.Replace {
		return os.Rename(tmpPath, target)
	}
	kept := filepath.Join(filepath.Dir(target), KeptPrefix+filepath.Base(target))
	if err := os.Rename(target, kept); err != nil {
		return fmt.Errorf("keep original: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		if rerr := os.Rename(kept, target); rerr != nil {
			logging.L().Error("restoring original artifact", "path", target, "err", rerr)
		}
		return fmt.Errorf("install result: %w", err)
	}
	logging.L().Info("artifact replaced", "path", target, "original", kept)
	return nil
}

// installMode is the permission set the installed artifact gets: the mode
// of the file it replaces, or defaultMode for a new one.
func installMode(target string) os.FileMode {
	if fi, err := os.Stat(target); err == nil {
		return fi.Mode().Perm()
	}
	return defaultMode
}

// Close releases transformer connections and sinks.
func (r *Runner) Close() error {
	var errs []error
	if err := r.chain.Close(); err != nil {
		errs = append(errs, err)
	}
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
