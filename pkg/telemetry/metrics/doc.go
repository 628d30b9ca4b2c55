// Package metrics provides Prometheus metrics collection for sdclint.
//
// # Metrics Categories
//
//   - Validation Metrics: validations by outcome, durations, diagnostics by
//     severity, kind and rule, rule failures
//   - Run Metrics: batch runs by trigger and status, run duration, component
//     count and last run time
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//
//	start := time.Now()
//	diags := v.ValidateComponent(def.ID, def)
//	collector.RecordValidation("component", diags, time.Since(start))
//
// A one-shot lint run writes the registry to a file for the node_exporter
// textfile collector:
//
//	if err := collector.WriteTextfile(cfg.Metrics.Textfile); err != nil {
//		return err
//	}
//
// The watch command serves it instead:
//
//	mux.Handle(cfg.Metrics.Path, collector.Handler())
//
// All metrics live in the collector's own registry, never in the global
// default registry, so several collectors can coexist in tests.
package metrics
