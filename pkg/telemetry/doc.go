// Package telemetry bundles the observability of a sdclint process.
//
// # Components
//
//   - logging: structured logging on log/slog
//   - metrics: Prometheus metrics, written to a textfile or served
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness and readiness endpoints of the watch command
//
// # Usage
//
//	tel, err := telemetry.New(cfg, version, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.Logger().Info("Start validation", "project", dir)
//	ctx, span := tel.Tracer().Start(ctx, "lint.run")
//	defer span.End()
package telemetry
