// Package kv provides the persistent key-value area that backs the local
// record store and the session slot. Each key holds one opaque value that is
// always read and written whole.
package kv

import "context"

// KV is a flat key-value area with whole-value reads and writes.
type KV interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
