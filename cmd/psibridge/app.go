package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"psibridge/internal/blob"
	"psibridge/internal/config"
	"psibridge/internal/core"
	"psibridge/internal/enrich"
	"psibridge/internal/enrich/webservice"
)

// newFetchers builds the remote fetchers used by enrich. Tests replace it.
var newFetchers = func(cfg webservice.Config) enrich.Fetchers {
	return webservice.New(cfg)
}

// metricsSink is a recorder whose totals are written to a file at exit.
type metricsSink interface {
	core.MetricsRecorder
	WriteTextfile(path string) error
}

// app is the wired service for one command run.
type app struct {
	cfg      *config.Config
	logger   *core.ZapLogger
	metrics  metricsSink
	provider *sdktrace.TracerProvider
	svc      *core.Service
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(o.configPath, o.envFiles...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Merge(&config.Config{
		Storage: config.StorageConfig{Driver: o.storage, SQLitePath: o.sqlitePath},
		Blob:    config.BlobConfig{Driver: o.blob, FSRoot: o.blobRoot},
		Log:     config.LogConfig{Level: o.logLevel, Format: o.logFormat},
		Metrics: config.MetricsConfig{Exporter: o.metricsExporter, Textfile: o.metricsOut, Trace: o.trace, TraceFormat: o.traceFormat},
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads the configuration and wires logger, metrics, tracing,
// stores and the enricher into a service.
func (o *rootOptions) openApp(ctx context.Context, tune func(*config.Config)) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if tune != nil {
		tune(cfg)
	}
	logger, err := core.NewZapLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	if cfg.Metrics.Exporter == config.ExporterExpvar {
		a.metrics = core.NewExpvarMetricsRecorder("")
	} else {
		a.metrics = core.NewPrometheusRecorder()
	}

	entries, err := core.OpenEntryStore(cfg.StorageSettings())
	if err != nil {
		return nil, fmt.Errorf("open entry store: %w", err)
	}
	blobs, err := blob.Open(ctx, cfg.BlobSettings())
	if err != nil {
		if c, ok := entries.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	enricher := enrich.New(cfg.EnrichSettings(), newFetchers(cfg.WebServiceSettings()),
		enrich.WithListener(core.EnrichLogListener{Logger: logger}))
	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithMetricsRecorder(a.metrics),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: logger}),
		core.WithConvertOptions(cfg.ConvertOptions()),
		core.WithEnricher(enricher),
		core.WithUniprotOptions(cfg.UniprotOptions()),
	}
	switch {
	case !cfg.Metrics.Trace:
	case cfg.Metrics.TraceFormat == config.TraceJSON:
		opts = append(opts, core.WithTracer(core.NewJSONTracer(o.traceOut)))
	default:
		a.provider = core.NewLogTracerProvider(logger)
		opts = append(opts, core.WithTracer(core.NewOTelTracer(a.provider)))
	}
	a.svc = core.NewService(entries, blobs, opts...)
	logger.Debug("service ready",
		"storage", cfg.Storage.Driver, "blob", blobs.Driver(),
		"compact_xml", cfg.Conversion.CompactXML)
	return a, nil
}

// Close flushes metrics and traces and releases the stores.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if err := a.svc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close entry store: %w", err))
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	// Sync returns EINVAL for terminals.
	_ = a.logger.Sync()
	return errors.Join(errs...)
}

// withApp runs fn with a wired app and closes it afterwards.
func (o *rootOptions) withApp(ctx context.Context, tune func(*config.Config), fn func(*app) error) (err error) {
	a, err := o.openApp(ctx, tune)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

// createOutput creates or truncates the file at path.
func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
