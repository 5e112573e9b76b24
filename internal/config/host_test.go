package config

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/engine"
	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/testutil"
)

func TestOpen_Memory(t *testing.T) {
	rec := testutil.NewRecordingSink()
	h, err := Open(t.Context(), Default(), nil, rec)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	assert.Nil(t, h.Events)
	assert.Nil(t, h.Publisher)

	_, err = h.Engine.CreateUser(t.Context(), "alice", "", "", "pk", nil)
	require.NoError(t, err)
	assert.Equal(t, []ir.EventKind{ir.KindUserCreated}, rec.Kinds())
}

func TestOpen_SQLiteWithEventLog(t *testing.T) {
	ctx := t.Context()
	cfg := Default()
	cfg.Backend = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "sg.db")
	cfg.Events.Log = true

	h, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = h.Engine.CreateUser(ctx, "alice", "", "", "pk", nil)
	require.NoError(t, err)

	records, err := h.Events.ReadEvents(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ir.KindUserCreated, records[0].Kind)
	require.NoError(t, h.Close())

	// State and events survive a reopen.
	h, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	u, err := h.Engine.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)
	_, err = h.Engine.CreateUser(ctx, "bob", "", "", "pk-b", nil)
	require.NoError(t, err)

	records, err = h.Events.ReadEvents(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[1].Seq)
}

func TestOpen_RedisWithPublisher(t *testing.T) {
	ctx := t.Context()
	mr := miniredis.RunT(t)
	cfg := Default()
	cfg.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "sgtest"
	cfg.Events.Publish = true

	h, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	require.NotNil(t, h.Publisher)
	assert.Equal(t, "sgtest:events", h.Publisher.Channel())

	_, err = h.Engine.CreateUser(ctx, "alice", "", "", "pk", nil)
	require.NoError(t, err)

	assert.Contains(t, mr.HGet("sgtest:users", "1"), `"name":"alice"`)
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := Default()
	cfg.Backend = "redis"
	cfg.Redis.Addr = addr
	_, err := Open(t.Context(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect redis")
}

func TestNewClock(t *testing.T) {
	assert.IsType(t, engine.WallClock{}, NewClock("wall", 7))
	c := NewClock("logical", 0)
	assert.Equal(t, int64(1), c.Now())
	assert.Equal(t, int64(2), c.Now())
	assert.Equal(t, int64(8), NewClock("logical", 7).Now())
}

func TestOpen_LogicalClockResumesAcrossReopen(t *testing.T) {
	ctx := t.Context()
	cfg := Default()
	cfg.Backend = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "sg.db")
	cfg.Clock = "logical"

	h, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	u, err := h.Engine.CreateUser(ctx, "alice", "", "", "pk", nil)
	require.NoError(t, err)
	_, err = h.Engine.CreatePost(ctx, u.ID, "first")
	require.NoError(t, err)
	p2, err := h.Engine.CreatePost(ctx, u.ID, "second")
	require.NoError(t, err)
	_, err = h.Engine.LikePost(ctx, p2.ID, u.ID)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h, err = Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	p3, err := h.Engine.CreatePost(ctx, u.ID, "third")
	require.NoError(t, err)

	posts, err := h.Engine.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, int64(4), p3.Timestamp, "resumes after the like stamped at 3")
	assert.Greater(t, p3.Timestamp, posts[1].Likes[0].Timestamp)
}
