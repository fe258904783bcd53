package cli

import (
	"context"
	"fmt"
	"os"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/willibrandon/gorestore/cmd/gorestore/config"
	"github.com/willibrandon/gorestore/cmd/gorestore/output"
	"github.com/willibrandon/gorestore/cmd/gorestore/version"
	"github.com/willibrandon/gorestore/observability"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	Verbosity     string
	SettingsFile  string
	LogLevel      string
	Trace         string
	TraceEndpoint string
	MetricsAddr   string
}

// Env is what commands run with: the console, the loaded settings and the
// session logger. It is filled in by Setup before a command runs.
type Env struct {
	Console  *output.Console
	Settings *config.Settings
	Logger   observability.Logger

	tracer *sdktrace.TracerProvider
}

// NewEnv creates an environment with empty settings and a discarding logger.
func NewEnv(console *output.Console) *Env {
	return &Env{
		Console:  console,
		Settings: &config.Settings{},
		Logger:   observability.NewNullLogger(),
	}
}

// Setup loads settings, then applies flags over them: console verbosity,
// the log level, tracing and the metrics endpoint.
func (e *Env) Setup(ctx context.Context, flags GlobalFlags) error {
	settings, err := loadSettings(flags.SettingsFile)
	if err != nil {
		return err
	}
	e.Settings = settings

	verbosity, err := output.ParseVerbosity(flags.Verbosity)
	if err != nil {
		return err
	}
	e.Console.SetVerbosity(verbosity)

	levelName := firstNonEmpty(flags.LogLevel, settings.LogLevel, "warn")
	level, err := observability.ParseLogLevel(levelName)
	if err != nil {
		return err
	}
	e.Logger = observability.NewLogger(e.Console.Err(), level)

	exporter := firstNonEmpty(flags.Trace, settings.Tracing.Exporter, observability.ExporterNone)
	if exporter != observability.ExporterNone {
		cfg := observability.DefaultTracerConfig()
		cfg.ServiceVersion = version.Version
		cfg.ExporterType = exporter
		cfg.OTLPEndpoint = firstNonEmpty(flags.TraceEndpoint, settings.Tracing.Endpoint, cfg.OTLPEndpoint)
		tp, err := observability.SetupTracing(ctx, cfg)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		e.tracer = tp
	}

	if addr := firstNonEmpty(flags.MetricsAddr, settings.Metrics.Address); addr != "" {
		go func() {
			if err := observability.StartMetricsServer(addr); err != nil {
				e.Logger.Error("Metrics endpoint {Address} stopped: {Error}", addr, err)
			}
		}()
		e.Logger.Debug("Serving metrics on {Address}", addr)
	}
	return nil
}

// Shutdown flushes pending spans.
func (e *Env) Shutdown(ctx context.Context) error {
	if e.tracer == nil {
		return nil
	}
	err := observability.ShutdownTracing(ctx, e.tracer)
	e.tracer = nil
	return err
}

func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadSettings(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return config.FindSettings(wd)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
