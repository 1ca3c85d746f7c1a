package pipeline

import (
	"context"
	"fmt"
	"time"

	"rejar/internal/config"
	"rejar/internal/engine"
	"rejar/internal/spec"
	"rejar/internal/transform"
	"rejar/sink"
	"rejar/sink/stdout"

	_ "rejar/sink/kafka" // registers the kafka report sink
)

// Compile loads a run spec from disk and builds a Runner for it.
func Compile(ctx context.Context, path string) (*Runner, error) {
	cfg, err := config.LoadRunSpec(path)
	if err != nil {
		return nil, err
	}
	return Build(ctx, cfg)
}

// Build wires a Runner from an already loaded (and possibly flag-merged)
// spec. The caller owns the Runner and must Close it.
func Build(ctx context.Context, cfg spec.File) (*Runner, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	filter, err := engine.NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	r := NewRunner(cfg)

	specs := make([]transform.Spec, 0, len(cfg.Transformers))
	for _, t := range cfg.Transformers {
		specs = append(specs, transform.Spec{
			Name:    t.Name,
			Type:    t.Type,
			Address: t.Address,
			Command: t.Command,
			Timeout: time.Duration(t.TimeoutMS) * time.Millisecond,
			Retry: transform.RetryPolicy{
				Attempts: t.RetryPolicy.Attempts,
				Backoff:  time.Duration(t.RetryPolicy.BackoffMS) * time.Millisecond,
			},
		})
	}
	chain, err := transform.Build(ctx, specs)
	if err != nil {
		return nil, err
	}
	r.chain = chain

	var loader any
	if len(cfg.Classpath) > 0 {
		loader = transform.Classpath(cfg.Classpath)
	}
	r.engineCfg = engine.Config{
		Loader:           loader,
		Sources:          cfg.Sources,
		Chain:            chain,
		Suffix:           cfg.Suffix,
		Filter:           filter,
		Pre:              engine.ResourceHook(resources(cfg.Resources.Pre)),
		Post:             engine.ResourceHook(resources(cfg.Resources.Post)),
		CompressionLevel: cfg.CompressionLevel,
	}

	for _, name := range cfg.Report.Sinks {
		sDrv, err := sink.NewAdapter(name)
		if err != nil {
			_ = r.Close()
			return nil, err
		}

		switch name {
		case "stdout":
			err = sDrv.Configure(stdout.Config{Format: cfg.Report.Stdout.Format})
		case "kafka":
			kc, lerr := config.LoadKafkaConfig(cfg.Report.Kafka)
			if lerr != nil {
				err = lerr
				break
			}
			err = sDrv.Configure(kc)
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		r.AddSink(sDrv)
	}
	return r, nil
}

func resources(in []spec.ResourceSpec) []engine.Resource {
	out := make([]engine.Resource, 0, len(in))
	for _, r := range in {
		out = append(out, engine.Resource{Name: r.Name, Path: r.File})
	}
	return out
}
