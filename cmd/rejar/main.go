package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"rejar/internal/config"
	"rejar/internal/logging"
	"rejar/internal/pipeline"
	"rejar/internal/spec"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("rejar", pflag.ContinueOnError)
	var (
		specPath    = flags.StringP("config", "c", "", "run spec (YAML)")
		sources     = flags.StringSliceP("source", "s", nil, "source archive, repeatable; replaces the config's sources")
		destination = flags.StringP("output", "o", "", "destination archive")
		replace     = flags.Bool("replace", false, "replace the single source and keep it as notransform-<name>")
		suffix      = flags.String("suffix", "", "compiled-unit suffix (default .class)")
		classpath   = flags.StringSlice("classpath", nil, "classpath forwarded to transformers")
		include     = flags.StringSlice("include", nil, "only rewrite units matching these globs")
		exclude     = flags.StringSlice("exclude", nil, "never rewrite units matching these globs")
		sinks       = flags.StringSlice("report", nil, "report sinks (stdout, kafka)")
		textfile    = flags.String("metrics-textfile", "", "write prometheus metrics to this file")
		logLevel    = flags.String("log-level", "", "debug|info|warn|error (env REJAR_LOG_LEVEL)")
		logJSON     = flags.Bool("log-json", false, "log as JSON (env REJAR_LOG_JSON)")
	)
	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	logOpts := logging.FromEnv()
	if *logLevel != "" {
		logOpts.Level = *logLevel
	}
	if flags.Changed("log-json") {
		logOpts.JSON = *logJSON
	}
	logging.Configure(logOpts)
	log := logging.L()

	var cfg spec.File
	if *specPath != "" {
		var err error
		if cfg, err = config.LoadRunSpec(*specPath); err != nil {
			log.Error("load config", "path", *specPath, "err", err)
			return 1
		}
	}

	// Flags win over the config file; their paths are relative to the cwd.
	if flags.Changed("source") {
		cfg.Sources = *sources
	}
	if *destination != "" {
		cfg.Destination = *destination
	}
	if flags.Changed("replace") {
		cfg.Replace = *replace
	}
	if *suffix != "" {
		cfg.Suffix = *suffix
	}
	if flags.Changed("classpath") {
		cfg.Classpath = *classpath
	}
	if flags.Changed("include") {
		cfg.Include = *include
	}
	if flags.Changed("exclude") {
		cfg.Exclude = *exclude
	}
	if flags.Changed("report") {
		cfg.Report.Sinks = *sinks
	}
	if *textfile != "" {
		cfg.Metrics.Textfile = *textfile
	}
	if cwd, err := os.Getwd(); err == nil {
		config.Resolve(&cfg, cwd)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Error("build pipeline", "err", err)
		return 1
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn("close pipeline", "err", err)
		}
	}()

	if _, err := r.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rejar: %v\n", err)
		return 1
	}
	return 0
}
