// Package driving defines interfaces that external actors (CLI, HTTP
// binding, workers) use to interact with core services. These are the
// "driving" ports in hexagonal architecture terminology - they drive the
// application.
//
// Implementations of these interfaces live in internal/core/services;
// the remote adapter provides a network-backed implementation of Queue so
// workers can run out-of-process.
package driving
