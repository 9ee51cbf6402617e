// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The queue service is the only place where document status
// transitions are enforced.
package services
