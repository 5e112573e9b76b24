package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/ir"
	"github.com/roach88/socialgraph/internal/store"
	"github.com/roach88/socialgraph/internal/testutil"
)

type testEngine struct {
	*Engine
	sink  *testutil.RecordingSink
	clock *testutil.DeterministicClock
}

// newTestEngine returns an engine over a fresh in-memory backend with a
// deterministic clock and a recording sink.
func newTestEngine(t *testing.T) testEngine {
	t.Helper()
	sink := testutil.NewRecordingSink()
	clock := testutil.NewDeterministicClock()
	e := New(store.NewMemory(), WithClock(clock), WithSink(sink))
	return testEngine{Engine: e, sink: sink, clock: clock}
}

func (te testEngine) mustUser(t *testing.T, name string) ir.User {
	t.Helper()
	u, err := te.CreateUser(t.Context(), name, name+".png", "bio of "+name, "pk-"+name, nil)
	require.NoError(t, err)
	return u
}

func (te testEngine) mustPost(t *testing.T, authorID, content string) ir.Post {
	t.Helper()
	p, err := te.CreatePost(t.Context(), authorID, content)
	require.NoError(t, err)
	return p
}

func (te testEngine) mustDigest(t *testing.T) string {
	t.Helper()
	d, err := te.Digest(t.Context())
	require.NoError(t, err)
	return d
}
