// Package health provides liveness and readiness endpoints for the serve
// command.
//
// Readiness aggregates named checks. The serve command registers a
// "registry" check (a builtin registry is loaded) and, when the audit log is
// enabled, an "evidence" check that pings the store.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("registry", dispatcher.Ready)
//	health.Register(mux, checker, health.VersionInfo{Version: version})
package health
