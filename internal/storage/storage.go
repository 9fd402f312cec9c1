package storage

import "context"

// Store is the durable client-state store. The cart keeps a JSON snapshot per
// user under it and the session keeps the bearer token; everything else lives
// in memory.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
