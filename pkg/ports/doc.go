// Package ports defines the interfaces between the Weft engine and the
// host: action providers (who do the actual work of a node kind) and
// workflow stores (where documents are persisted). Adapters implement
// these; the engine only depends on the interfaces.
package ports
