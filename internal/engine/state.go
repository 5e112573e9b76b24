package engine

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
)

// Names of the maps that make up the persisted state.
const (
	MapUsers      = "users"
	MapPosts      = "posts"
	MapPublicKeys = "public_keys"
	MapFollowers  = "followers"
	MapFollowing  = "following"
	MapCounters   = "counters"
)

// State is the aggregate the engine mutates. Every field is a typed view of
// one named map in the backend.
type State struct {
	users      store.Collection[ir.User]
	posts      store.Collection[ir.Post]
	publicKeys store.Collection[string]
	followers  store.Collection[[]string]
	following  store.Collection[[]string]
	ids        allocator
}

// NewState binds a State to backend. On an empty backend this is the initial
// state: every map empty and both counters zero.
func NewState(backend store.Backend) *State {
	return &State{
		users:      store.NewCollection[ir.User](backend.Map(MapUsers)),
		posts:      store.NewCollection[ir.Post](backend.Map(MapPosts)),
		publicKeys: store.NewCollection[string](backend.Map(MapPublicKeys)),
		followers:  store.NewCollection[[]string](backend.Map(MapFollowers)),
		following:  store.NewCollection[[]string](backend.Map(MapFollowing)),
		ids:        allocator{counters: backend.Map(MapCounters)},
	}
}

func (s *State) user(ctx context.Context, id string) (ir.User, error) {
	u, ok, err := s.users.Get(ctx, id)
	if err != nil {
		return ir.User{}, fmt.Errorf("read user: %w", err)
	}
	if !ok {
		return ir.User{}, UserNotFound(id)
	}
	return u, nil
}

func (s *State) post(ctx context.Context, id string) (ir.Post, error) {
	p, ok, err := s.posts.Get(ctx, id)
	if err != nil {
		return ir.Post{}, fmt.Errorf("read post: %w", err)
	}
	if !ok {
		return ir.Post{}, PostNotFound(id)
	}
	return normalizePost(p), nil
}

func (s *State) allUsers(ctx context.Context) ([]ir.User, error) {
	users, err := s.users.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	slices.SortFunc(users, func(a, b ir.User) int { return compareIDs(a.ID, b.ID) })
	return users, nil
}

// allPosts returns every post newest first.
func (s *State) allPosts(ctx context.Context) ([]ir.Post, error) {
	posts, err := s.posts.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	for i := range posts {
		posts[i] = normalizePost(posts[i])
	}
	sortNewestFirst(posts)
	return posts, nil
}

// LastTimestamp returns the latest timestamp stamped on any post, like or
// tip, or 0 when nothing has been stamped yet.
func (s *State) LastTimestamp(ctx context.Context) (int64, error) {
	var last int64
	err := s.posts.Each(ctx, func(_ string, p ir.Post) error {
		last = max(last, p.Timestamp)
		for _, l := range p.Likes {
			last = max(last, l.Timestamp)
		}
		for _, tip := range p.Tips {
			last = max(last, tip.Timestamp)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("read posts: %w", err)
	}
	return last, nil
}

func (s *State) list(ctx context.Context, c store.Collection[[]string], id string) ([]string, error) {
	ids, _, err := c.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Snapshot renders the whole state as an IRObject. Users and posts are
// ordered by numeric id so the result is stable across backends.
func (s *State) Snapshot(ctx context.Context) (ir.IRObject, error) {
	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}
	for i := range posts {
		posts[i] = normalizePost(posts[i])
	}
	slices.SortFunc(posts, func(a, b ir.Post) int { return compareIDs(a.ID, b.ID) })

	keys, err := entriesObject(ctx, s.publicKeys)
	if err != nil {
		return nil, err
	}
	followers, err := entriesObject(ctx, s.followers)
	if err != nil {
		return nil, err
	}
	following, err := entriesObject(ctx, s.following)
	if err != nil {
		return nil, err
	}
	userCount, err := s.ids.Current(ctx, KindUser)
	if err != nil {
		return nil, err
	}
	postCount, err := s.ids.Current(ctx, KindPost)
	if err != nil {
		return nil, err
	}

	uv, err := ir.Encode(users)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	pv, err := ir.Encode(posts)
	if err != nil {
		return nil, fmt.Errorf("encode posts: %w", err)
	}

	return ir.IRObject{
		"users":       uv,
		"posts":       pv,
		"public_keys": keys,
		"followers":   followers,
		"following":   following,
		"counters": ir.IRObject{
			string(KindUser): ir.IRInt(userCount),
			string(KindPost): ir.IRInt(postCount),
		},
	}, nil
}

// Digest hashes Snapshot. Equal digests mean equal state.
func (s *State) Digest(ctx context.Context) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return ir.StateDigest(snap)
}

func entriesObject[T any](ctx context.Context, c store.Collection[T]) (ir.IRObject, error) {
	obj := ir.IRObject{}
	err := c.Each(ctx, func(key string, v T) error {
		iv, err := ir.Encode(v)
		if err != nil {
			return err
		}
		obj[key] = iv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return obj, nil
}

// normalizePost replaces nil like and tip lists with empty ones.
func normalizePost(p ir.Post) ir.Post {
	if p.Likes == nil {
		p.Likes = []ir.Like{}
	}
	if p.Tips == nil {
		p.Tips = []ir.Tip{}
	}
	return p
}

// compareIDs orders decimal id strings numerically. Ids never carry
// leading zeros, so length then byte order is numeric order.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// sortNewestFirst orders posts by timestamp descending. Equal timestamps put
// the later-created (higher id) post first.
func sortNewestFirst(posts []ir.Post) {
	slices.SortStableFunc(posts, func(a, b ir.Post) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		return compareIDs(b.ID, a.ID)
	})
}
