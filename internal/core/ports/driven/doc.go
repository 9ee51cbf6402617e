// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LifecycleStore: Task/document rows and status transitions. The single
//     source of truth for state; every state-changing read-then-write is a
//     conditional update inside the store, never in the caller.
//   - BlobStore: Durable byte storage keyed by (tool, document id).
//   - ToolRunner: Out-of-process tool execution, invoked by workers.
//   - ConfigStore: Application configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
