// Package state keeps per-user conversational state in memory.
// Every access to one user's value is serialized, and values expire after a TTL.
package state
