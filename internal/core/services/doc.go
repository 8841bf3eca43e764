// Package services implements the core business logic: the versioned
// library, the ranking model, the retrieval orchestrator, and the ingest
// pipeline. Services depend only on ports, never on adapters.
package services
