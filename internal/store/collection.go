package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is a typed view over a Map. Values are stored as JSON.
type Collection[T any] struct {
	m Map
}

func NewCollection[T any](m Map) Collection[T] {
	return Collection[T]{m: m}
}

// Get decodes the value at key. ok is false when the key is absent.
func (c Collection[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var v T
	data, ok, err := c.m.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return v, true, nil
}

// Put encodes v and upserts it at key.
func (c Collection[T]) Put(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	_, _, err = c.m.Insert(ctx, key, data)
	return err
}

// Delete removes key and reports whether it existed.
func (c Collection[T]) Delete(ctx context.Context, key string) (bool, error) {
	_, existed, err := c.m.Remove(ctx, key)
	return existed, err
}

// Values decodes every entry in key order.
func (c Collection[T]) Values(ctx context.Context) ([]T, error) {
	out := []T{}
	err := c.Each(ctx, func(_ string, v T) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Each decodes entries in key order and calls fn for each. It stops at the
// first error fn returns.
func (c Collection[T]) Each(ctx context.Context, fn func(key string, v T) error) error {
	entries, err := c.m.Entries(ctx)
	if err != nil {
		return err
	}
	for k, data := range entries {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode %q: %w", k, err)
		}
		if err := fn(k, v); err != nil {
			return err
		}
	}
	return nil
}
