// Package server runs the HTTP pipeline and owns its lifecycle.
//
// Startup builds the first route table version and binds the listener.
// Shutdown is graceful: the readiness probe is switched off first, the
// server keeps serving for the configured drain delay so load balancers can
// stop routing to it, and then in-flight requests are drained within the
// shutdown timeout.
package server
