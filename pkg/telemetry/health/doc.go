// Package health provides the liveness, readiness and version endpoints
// served by the watch command next to its metrics endpoint.
//
//	checker := health.New(time.Second)
//	checker.RegisterCheck("last_run", func(ctx context.Context) error {
//		if !w.HasRun() {
//			return errors.New("no run completed yet")
//		}
//		return nil
//	})
//	health.Register(mux, checker, health.VersionInfo{Version: version})
//
// /ready answers 503 until every registered check passes.
package health
