package store

import (
	"context"
	"iter"
)

// Map is a persistent mapping from string key to serialised value.
//
// Insert is an upsert. Insert and Remove return the previous value when one
// existed. Entries returns a finite snapshot of the current contents in
// ascending byte order of key; callers must not assume it can be restarted.
type Map interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Insert(ctx context.Context, key string, value []byte) (prev []byte, existed bool, err error)
	Remove(ctx context.Context, key string) (prev []byte, existed bool, err error)
	Entries(ctx context.Context) (iter.Seq2[string, []byte], error)
}

// Backend hands out named maps. Map with the same name returns a view of the
// same underlying data.
type Backend interface {
	Map(name string) Map
	Close() error
}

// entrySeq yields pre-materialised key/value pairs.
func entrySeq(keys []string, values [][]byte) iter.Seq2[string, []byte] {
	return func(yield func(string, []byte) bool) {
		for i, k := range keys {
			if !yield(k, values[i]) {
				return
			}
		}
	}
}
