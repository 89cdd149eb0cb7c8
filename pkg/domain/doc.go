// Package domain contains the core types of the Weft workflow engine:
// nodes, edges, workflow documents, runtime states and lifecycle events.
// It has no dependencies on the engine mechanics, so adapters and hosts
// can share these types without importing the runtime.
package domain
