package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/socialgraph/internal/store"
)

// Kind selects an id counter.
type Kind string

const (
	KindUser Kind = "user"
	KindPost Kind = "post"
)

// allocator hands out ids from persisted per-kind counters. Counters are
// decimal strings in the counters map; an absent counter reads as zero.
// Ids are never reused, including after a post is deleted.
type allocator struct {
	counters store.Map
}

// Next increments the counter for kind and returns the new value as a string.
func (a allocator) Next(ctx context.Context, kind Kind) (string, error) {
	n, err := a.Current(ctx, kind)
	if err != nil {
		return "", err
	}
	id := strconv.FormatInt(n+1, 10)
	if _, _, err := a.counters.Insert(ctx, string(kind), []byte(id)); err != nil {
		return "", fmt.Errorf("allocate %s id: %w", kind, err)
	}
	return id, nil
}

// Current reads the counter for kind without incrementing it.
func (a allocator) Current(ctx context.Context, kind Kind) (int64, error) {
	v, ok, err := a.counters.Get(ctx, string(kind))
	if err != nil {
		return 0, fmt.Errorf("read %s counter: %w", kind, err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt %s counter %q: %w", kind, v, err)
	}
	return n, nil
}
