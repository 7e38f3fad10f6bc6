// Package kv is the key-value persistence used for grants, tokens, clients
// and in-flight authorization requests.
package kv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Acceleronix/cmp-auth-mcp-server/internal/errors"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.ErrNotFound

// Store is a minimal byte oriented key-value store. A ttl of zero means the
// value never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take atomically reads and removes a key. Used for single-use values
	// such as authorization codes.
	Take(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// TakeJSON consumes key and decodes it into v.
func TakeJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Take(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "[kv.PutJSON] marshal %s", key)
	}
	return s.Put(ctx, key, data, ttl)
}
