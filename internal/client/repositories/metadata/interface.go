// Package metadata is the key/value store behind the persisted session.
package metadata

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("metadata key is empty")

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
