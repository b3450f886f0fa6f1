// Package hostplay provides the dedicated server's startup lifecycle
// helpers: binding the listen port with an automatic fallback range, and
// a cancellation context used to coordinate graceful shutdown between
// cmd/server's signal handler and the tick loop.
//
// By default the bind address is localhost-only; config.BindAll opts
// into binding every interface for a public-facing deployment.
package hostplay
