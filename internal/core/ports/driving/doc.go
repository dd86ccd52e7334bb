// Package driving defines the interfaces the CLI uses to drive the
// core: ingestion and search. These are the "driving" ports in
// hexagonal architecture terminology.
//
// Implementations live in internal/core/services.
package driving
