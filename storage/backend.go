// Package storage persists JSON documents under fixed string keys.
//
// Backends move raw bytes. Store sits on top and gives callers the
// forgiving contract the rest of the service relies on: failures are
// logged and reads fall back to "absent".
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Backend when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
