package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/ir"
)

func TestEventLog_AppendAssignsSeq(t *testing.T) {
	ctx := t.Context()
	s := createTestStore(t)
	log, err := NewEventLog(ctx, s, nil)
	require.NoError(t, err)

	r1, err := log.Append(ctx, ir.UserCreated{ID: "1", Name: "alice"})
	require.NoError(t, err)
	r2, err := log.Append(ctx, ir.PostCreated{ID: "1", AuthorID: "1", Content: "hi", Timestamp: 5})
	require.NoError(t, err)

	assert.Equal(t, int64(1), r1.Seq)
	assert.Equal(t, int64(2), r2.Seq)
	assert.Equal(t, ir.MustEventID(ir.KindUserCreated, r1.Payload, 1), r1.ID)
}

func TestEventLog_ReadEvents(t *testing.T) {
	ctx := t.Context()
	s := createTestStore(t)
	log, err := NewEventLog(ctx, s, nil)
	require.NoError(t, err)

	log.Emit(ir.UserCreated{ID: "1", Name: "alice"})
	log.Emit(ir.UserCreated{ID: "2", Name: "bob"})
	log.Emit(ir.UserFollowed{FollowerID: "1", FolloweeID: "2"})

	all, err := s.ReadEvents(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ir.KindUserFollowed, all[2].Kind)
	assert.Equal(t, ir.IRString("2"), all[2].Payload["followee_id"])

	after, err := s.ReadEvents(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, after, 2)

	created, err := s.ReadEvents(ctx, 0, ir.KindUserCreated)
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestEventLog_ResumesSeqAfterReopen(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "events.db")

	s1, err := Open(path)
	require.NoError(t, err)
	log1, err := NewEventLog(ctx, s1, nil)
	require.NoError(t, err)
	log1.Emit(ir.UserCreated{ID: "1", Name: "alice"})
	log1.Emit(ir.UserCreated{ID: "2", Name: "bob"})
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	log2, err := NewEventLog(ctx, s2, nil)
	require.NoError(t, err)

	rec, err := log2.Append(ctx, ir.PostDeleted{ID: "1", AuthorID: "1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.Seq)

	last, err := s2.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), last)
}

func TestEventLog_WriteEventIdempotent(t *testing.T) {
	ctx := t.Context()
	s := createTestStore(t)

	rec, err := ir.NewEventRecord(ir.PostUnliked{ID: "1", UserID: "2"}, 1)
	require.NoError(t, err)
	require.NoError(t, s.WriteEvent(ctx, rec))
	require.NoError(t, s.WriteEvent(ctx, rec))

	all, err := s.ReadEvents(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
