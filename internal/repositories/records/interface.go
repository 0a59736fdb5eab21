package records

import (
	"context"
)

// Repository is a durable key-value store addressed by (namespace, key).
// Read returns (nil, nil) when the record is absent.
type Repository interface {
	Read(ctx context.Context, namespace, key string) ([]byte, error)
	Write(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
	List(ctx context.Context, namespace string) (map[string][]byte, error)
	Clear(ctx context.Context, namespace string) error
}
