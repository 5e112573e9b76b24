package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `name: two_users
description: two users follow each other
setup:
  - op: create_user
    args: {name: alice, avatar: "", bio: "", public_key: pk-a}
  - op: create_user
    args: {name: bob, avatar: "", bio: "", public_key: pk-b}
flow:
  - invoke: follow_user
    args: {follower_id: "1", followee_id: "2"}
  - invoke: follow_user
    args: {follower_id: "1", followee_id: "1"}
    expect:
      error: CONFLICT
assertions:
  - type: event_count
    kind: UserFollowed
    count: 1
`

const failingScenario = `name: wrong_count
description: expects a post count that never happens
flow:
  - invoke: get_post_count
    expect:
      result: 5
`

// writeScenarios lays out <tmp>/scenarios/<file> and returns the directory.
func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestTest_HarnessScenariosPass(t *testing.T) {
	run := runCLI(t, nil, "test", harnessScenarios)
	require.NoError(t, run.err, run.stdout)
	assert.Contains(t, run.stdout, "✓ follow_graph")
	assert.Contains(t, run.stdout, "✓ like_and_tip")
	assert.Contains(t, run.stdout, "✓ delete_and_rename")
	assert.Contains(t, run.stdout, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTest_Filter(t *testing.T) {
	run := runCLI(t, nil, "test", harnessScenarios, "--filter", "follow_*", "--format", "json")
	require.NoError(t, run.err)

	var got TestResult
	resp := decodeResponse(t, run.stdout, &got)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, got.Total)
	require.Len(t, got.Scenarios, 1)
	assert.Equal(t, "follow_graph", got.Scenarios[0].Name)
}

func TestTest_SingleFile(t *testing.T) {
	run := runCLI(t, nil, "test", filepath.Join(harnessScenarios, "like_and_tip.yaml"))
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, "1 passed")
}

func TestTest_FailureExitsOne(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"a_pass.yaml": passingScenario,
		"b_fail.yaml": failingScenario,
	})

	run := runCLI(t, nil, "test", dir, "--format", "json")
	require.Error(t, run.err)
	assert.Equal(t, ExitFailure, GetExitCode(run.err))

	var got TestResult
	resp := decodeResponse(t, run.stdout, &got)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 1, got.Passed)
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Scenarios, 2)
	assert.False(t, got.Scenarios[1].Pass)
	assert.NotEmpty(t, got.Scenarios[1].Errors)
}

func TestTest_LoadError(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"broken.yaml": "name: [unclosed"})

	run := runCLI(t, nil, "test", dir)
	require.Error(t, run.err)
	assert.Contains(t, run.stdout, "✗ broken.yaml")
	assert.Contains(t, run.stdout, "failed to load scenario")
}

func TestTest_UpdateThenCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"two_users.yaml": passingScenario})
	golden := filepath.Join(filepath.Dir(dir), "golden", "two_users.golden")

	run := runCLI(t, nil, "test", dir, "--update")
	require.NoError(t, run.err, run.stdout)
	assert.Contains(t, run.stdout, "✓ two_users (golden updated)")

	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"two_users"`)
	assert.Contains(t, string(data), `"error":"CONFLICT"`)

	run = runCLI(t, nil, "test", dir)
	require.NoError(t, run.err, run.stdout)

	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario_name":"two_users","trace":[]}`), 0o644))
	run = runCLI(t, nil, "test", dir)
	require.Error(t, run.err)
	assert.Contains(t, run.stdout, "trace does not match golden file")
}

func TestTest_Empty(t *testing.T) {
	dir := writeScenarios(t, nil)

	run := runCLI(t, nil, "test", dir)
	require.NoError(t, run.err)
	assert.Equal(t, "No scenarios found.\n", run.stdout)
}

func TestTest_MissingPath(t *testing.T) {
	run := runCLI(t, nil, "test", filepath.Join(t.TempDir(), "nowhere"))
	require.Error(t, run.err)
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("testdata", "golden", "follow_graph.golden"),
		goldenFilePath(filepath.Join("testdata", "scenarios", "follow_graph.yaml")))
}
