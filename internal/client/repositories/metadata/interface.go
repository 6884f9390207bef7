package metadata

import (
	"context"
)

// Repository is durable key-value storage for small client state: the
// persisted pending-sync sets and the saved session. Get returns (nil, nil)
// for an absent key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
