// Package kv is the durable per-device key/value store the client core persists
// its three records into: the post cache snapshot, the submission cooldown and
// the vote ledger. Values are JSON documents.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupted is returned by Load when the stored value is not valid JSON for
// the target type. Callers treat it as "absent".
var ErrCorrupted = errors.New("stored value is corrupted")

// Store is satisfied by SQLite (durable) and Memory (tests, ephemeral runs).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Load reads key into out. found is false when the key is absent.
func Load(ctx context.Context, s Store, key string, out any) (found bool, err error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: key %q: %v", ErrCorrupted, key, err)
	}
	return true, nil
}

// Save marshals v and writes it under key, replacing any previous value.
func Save(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
