// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Normaliser: Transforms a segmented block into registry and search records
//   - PostProcessor / PostProcessorPipeline: Stats, lint and sharding stages
//   - ContentStore: Artifact persistence (GitHub, local git, directory, memory)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SchemaValidator: JSON-schema checks. Without it, output is not validated.
//   - StatsHistoryStore: Snapshot history. Without it, history is not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or pipeline-stage package
package driven
