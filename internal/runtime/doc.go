// Package runtime contains the execution mechanics of the engine: one
// NodeRuntime state machine per node and the Coordinator that serializes
// graph mutations, assigns trigger ticks and fans completions out to
// trigger-edge successors.
//
// Concurrency model: a single mutex serializes every graph mutation
// (single-writer, read-copy-update snapshots), while provider calls run
// on their own goroutines with no ambient concurrency limit. The only
// suspension point is the provider call itself.
package runtime
