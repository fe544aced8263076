// Package kvstore is the durable key/value namespace shared by every
// component that keeps whole documents (carts, order lists, settings).
//
// Writers always replace the entire value stored under a key. There is no
// partial update and no versioning: concurrent writers to one key race and
// the last write wins.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value under key into v. A missing key returns
// ErrNotFound; a value that does not decode returns a *DecodeError.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// DecodeError reports a stored value that is no longer readable.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("kvstore: decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadJSON is GetJSON for callers that treat an absent key as the zero value.
// It reports whether a value was found.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	err := GetJSON(ctx, s, key, v)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
