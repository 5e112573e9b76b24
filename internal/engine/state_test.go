package engine

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
	"github.com/roach88/socialgraph/internal/testutil"
)

func TestInit_EmptyState(t *testing.T) {
	e := Init(store.NewMemory())

	snap, err := e.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Equal(t, ir.IRObject{
		"users":       ir.IRArray{},
		"posts":       ir.IRArray{},
		"public_keys": ir.IRObject{},
		"followers":   ir.IRObject{},
		"following":   ir.IRObject{},
		"counters":    ir.IRObject{"user": ir.IRInt(0), "post": ir.IRInt(0)},
	}, snap)

	count, err := e.GetPostCount(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSnapshot_Contents(t *testing.T) {
	te := newTestEngine(t)
	ctx := t.Context()
	alice := te.mustUser(t, "alice")
	bob := te.mustUser(t, "bob")
	te.mustPost(t, alice.ID, "hi")
	require.NoError(t, te.FollowUser(ctx, alice.ID, bob.ID))

	snap, err := te.Snapshot(ctx)
	require.NoError(t, err)

	assert.Len(t, snap["users"], 2)
	assert.Len(t, snap["posts"], 1)
	assert.Equal(t, ir.IRObject{"pk-alice": ir.IRString("1"), "pk-bob": ir.IRString("2")}, snap["public_keys"])
	assert.Equal(t, ir.IRObject{"2": ir.IRArray{ir.IRString("1")}}, snap["followers"])
	assert.Equal(t, ir.IRObject{"user": ir.IRInt(2), "post": ir.IRInt(1)}, snap["counters"])

	_, err = ir.MarshalCanonical(snap)
	require.NoError(t, err)
}

// runWorkload applies the same operations to an engine and returns its digest.
func runWorkload(t *testing.T, backend store.Backend) string {
	t.Helper()
	ctx := t.Context()
	e := New(backend, WithClock(testutil.NewDeterministicClock()))

	_, err := e.CreateUser(ctx, "alice", "a", "", "pk-a", ir.StringPtr("0x1"))
	require.NoError(t, err)
	_, err = e.CreateUser(ctx, "bob", "b", "", "pk-b", nil)
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		_, err = e.CreatePost(ctx, "1", "post")
		require.NoError(t, err)
	}
	_, err = e.LikePost(ctx, "10", "2")
	require.NoError(t, err)
	_, err = e.RecordTip(ctx, "2", "2", "1.25", "0xff")
	require.NoError(t, err)
	require.NoError(t, e.FollowUser(ctx, "2", "1"))
	require.NoError(t, e.DeletePost(ctx, "3", "1"))
	_, err = e.UpdateUser(ctx, "1", "alicia", "bio", nil)
	require.NoError(t, err)

	posts, err := e.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 10)
	assert.Equal(t, "11", posts[0].ID)
	assert.Equal(t, "alicia", posts[0].AuthorName)

	d, err := e.Digest(ctx)
	require.NoError(t, err)
	return d
}

func TestBackends_SameDigest(t *testing.T) {
	sqlite, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	memDigest := runWorkload(t, store.NewMemory())
	assert.Equal(t, memDigest, runWorkload(t, sqlite), "sqlite")
	assert.Equal(t, memDigest, runWorkload(t, store.NewRedis(client, "sg")), "redis")
}

func TestEngine_ConcurrentCallersSerialised(t *testing.T) {
	te := newTestEngine(t)
	ctx := t.Context()
	author := te.mustUser(t, "author")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := te.CreatePost(ctx, author.ID, "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := te.GetPostCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)

	posts, err := te.GetAllPosts(ctx)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range posts {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestSinks(t *testing.T) {
	var got []ir.EventKind
	rec := testutil.NewRecordingSink()
	sink := MultiSink{rec, SinkFunc(func(ev ir.Event) { got = append(got, ev.Kind()) }), Discard}

	e := New(store.NewMemory(), WithSink(sink))
	_, err := e.CreateUser(t.Context(), "alice", "", "", "pk", nil)
	require.NoError(t, err)

	assert.Equal(t, []ir.EventKind{ir.KindUserCreated}, got)
	assert.Equal(t, []ir.EventKind{ir.KindUserCreated}, rec.Kinds())
}

func TestEventLogSink(t *testing.T) {
	ctx := t.Context()
	s, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	log, err := store.NewEventLog(ctx, s, nil)
	require.NoError(t, err)

	e := New(s, WithSink(log))
	_, err = e.CreateUser(ctx, "alice", "", "", "pk", nil)
	require.NoError(t, err)
	_, err = e.CreatePost(ctx, "1", "hi")
	require.NoError(t, err)

	records, err := s.ReadEvents(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ir.KindUserCreated, records[0].Kind)
	assert.Equal(t, ir.KindPostCreated, records[1].Kind)
}

func TestCompareIDs(t *testing.T) {
	assert.Negative(t, compareIDs("2", "10"))
	assert.Positive(t, compareIDs("10", "9"))
	assert.Zero(t, compareIDs("7", "7"))
}

func TestState_LastTimestamp(t *testing.T) {
	ctx := t.Context()
	backend := store.NewMemory()
	e := New(backend, WithClock(NewLogicalClockAt(10)))

	last, err := NewState(backend).LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Zero(t, last)

	u, err := e.CreateUser(ctx, "alice", "", "", "pk-a", nil)
	require.NoError(t, err)
	p, err := e.CreatePost(ctx, u.ID, "gm")
	require.NoError(t, err)
	_, err = e.CreatePost(ctx, u.ID, "gn")
	require.NoError(t, err)
	_, err = e.RecordTip(ctx, p.ID, u.ID, "1", "0xt")
	require.NoError(t, err)

	last, err = NewState(backend).LastTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), last, "the tip on the older post is the newest stamp")
}
