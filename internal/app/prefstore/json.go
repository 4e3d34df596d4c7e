package prefstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON decodes the value under key into dst. It returns ErrNotFound when
// the key is absent.
func GetJSON(ctx context.Context, s Store, namespace, key string, dst any) error {
	raw, err := s.Get(ctx, namespace, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", namespace, key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, namespace, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", namespace, key, err)
	}
	return s.Set(ctx, namespace, key, raw)
}

// UpdateJSON decodes the value under key into a T (zero when absent), lets fn
// modify it and stores the result atomically. fn may return ErrNoChange.
func UpdateJSON[T any](ctx context.Context, s Store, namespace, key string, fn func(v *T, exists bool) error) error {
	return s.Update(ctx, namespace, key, func(current []byte, exists bool) ([]byte, error) {
		var v T
		if exists {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decode %s/%s: %w", namespace, key, err)
			}
		}

		if err := fn(&v, exists); err != nil {
			return nil, err
		}

		return json.Marshal(v)
	})
}
