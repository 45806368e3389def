package duck

import "duckproxy/internal/shape"

// Proxy marks a shape as live-forwarding. Embed it in the shape struct.
type Proxy = shape.Proxy

// Copy marks a shape as a snapshot read once at creation. Embed it in the
// shape struct.
type Copy = shape.Copy

// Property is a proxy member backed by a target getter/setter pair or field.
// Setter is nil when the member is read-only.
type Property[T any] = shape.Property[T]

// Indexer is a proxy member backed by keyed target accessors or by a map,
// slice or array field.
type Indexer[K, V any] = shape.Indexer[K, V]
