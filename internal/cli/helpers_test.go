package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"github.com/roach88/socialgraph/internal/testutil"
)

const testRequestID = "req-test"

type cliRun struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the root command with env standing in for the process
// environment.
func runCLI(t *testing.T, env map[string]string, args ...string) cliRun {
	t.Helper()

	opts := &RootOptions{
		Lookuper:   envconfig.MapLookuper(env),
		RequestIDs: testutil.NewFixedIDGenerator(testRequestID),
	}
	cmd := newRootCommand(opts)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))

	err := cmd.ExecuteContext(t.Context())
	return cliRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// sqliteEnv configures a fresh SQLite store with the event log enabled.
func sqliteEnv(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		"SOCIALGRAPH_BACKEND":     "sqlite",
		"SOCIALGRAPH_SQLITE_PATH": filepath.Join(t.TempDir(), "sg.db"),
		"SOCIALGRAPH_CLOCK":       "logical",
		"SOCIALGRAPH_EVENTS_LOG":  "true",
		"SOCIALGRAPH_LOG_LEVEL":   "error",
	}
}

// decodeResponse parses a JSON CLI response, decoding data into out.
func decodeResponse(t *testing.T, raw string, out any) CLIResponse {
	t.Helper()

	var resp struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	if out != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp.CLIResponse
}
