// Package memory provides in-memory implementations of the driven storage
// ports. State lives for the life of the process; used by tests and by
// the "memory" storage backend.
package memory
