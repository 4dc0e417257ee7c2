// Package storage provides key/value backends that hold serialized
// snapshots, playing the role browser local storage plays for a
// single-page client: one key, one opaque blob, last write wins.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key holds nothing.
var ErrNotFound = errors.New("storage: key not found")

// Backend stores opaque values by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
