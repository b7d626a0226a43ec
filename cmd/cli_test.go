package cmd

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nebula-graph-cli/internal/adapters/transport/graphtest"
)

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestProfileAddRequiresAddress(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "profile", "add", "prod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"address\" not set")
}

func TestProfileAddRejectsInvalidPoolSizes(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(),
		"profile", "add", "prod",
		"--address", "graphd:9669",
		"--min-size", "5",
		"--max-size", "2",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min pool size must not exceed max pool size")
}

func TestProfileLifecycle(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home,
		"profile", "add", "prod",
		"--address", "graphd-a:9669",
		"--address", "graphd-b:9669",
		"--min-size", "1",
		"--max-size", "4",
		"--connect-timeout", "3s",
		"--username", "root",
		"--password", "nebula",
		"--space", "basketball",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Saved profile prod (graphd-a:9669, graphd-b:9669)")

	secretPath := filepath.Join(home, ".nebula", "secrets", "nebula", "prod", "root")
	data, err := os.ReadFile(secretPath)
	require.NoError(t, err)
	assert.Equal(t, "nebula", string(data))

	stdout, _, err = executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "prod\tgraphd-a:9669,graphd-b:9669\troot\tbasketball")

	stdout, _, err = executeCLI(t, home, "profile", "show", "prod", "--json")
	require.NoError(t, err)
	var view profileView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "prod", view.Name)
	assert.Equal(t, 1, view.MinSize)
	assert.Equal(t, 4, view.MaxSize)
	assert.Equal(t, "3s", view.ConnectTimeout)
	assert.Equal(t, "nebula/prod/root", view.PasswordRef)

	stdout, _, err = executeCLI(t, home, "--profile", "prod", "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pool size: 1..4")
	assert.Contains(t, stdout, "space: basketball")

	stdout, _, err = executeCLI(t, home, "profile", "remove", "prod")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Removed profile prod")
	assert.NoFileExists(t, secretPath)

	stdout, _, err = executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No profiles configured.")
}

func TestCredentialSetReadsStdinAndRemove(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "hunter2\n", "credential", "set", "nebula/dev/analyst")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stored credential nebula/dev/analyst")

	secretPath := filepath.Join(home, ".nebula", "secrets", "nebula", "dev", "analyst")
	data, err := os.ReadFile(secretPath)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", string(data))

	_, _, err = executeCLI(t, home, "credential", "remove", "nebula/dev/analyst")
	require.NoError(t, err)
	assert.NoFileExists(t, secretPath)
}

func TestCredentialSetRejectsEmptyValue(t *testing.T) {
	_, _, err := executeCLIWithInput(t, t.TempDir(), "", "credential", "set", "nebula/dev/analyst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential value is empty")
}

func TestQueryWithURLRendersTable(t *testing.T) {
	address := startGraphServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "--url", "root:nebula@"+address, "query", "RETURN", `"hello"`)
	require.NoError(t, err)
	assert.Contains(t, stdout, `> RETURN "hello"`)
	assert.Contains(t, stdout, "hello")
	assert.Contains(t, stdout, "Got 1 row")
}

func TestQueryJSONOutput(t *testing.T) {
	address := startGraphServer(t, graphtest.WithSpace("basketball", "player"))

	stdout, _, err := executeCLI(t, t.TempDir(),
		"--url", "root:nebula@"+address+"/basketball",
		"query", "--json", "SHOW TAGS",
	)
	require.NoError(t, err)

	var out queryOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "SHOW TAGS", out.Statement)
	assert.Equal(t, "basketball", out.Space)
	assert.Equal(t, int32(0), out.ErrorCode)
	assert.Equal(t, "SUCCEEDED", out.ErrorName)
	require.NotNil(t, out.Data)
	assert.Equal(t, []string{"Name"}, out.Data.ColumnNames)
	require.Len(t, out.Data.Rows, 1)
	assert.Equal(t, "player", out.Data.Rows[0].Values[0].Str)
}

func TestQueryReadsStatementFromStdin(t *testing.T) {
	address := startGraphServer(t)

	stdout, _, err := executeCLIWithInput(t, t.TempDir(), "RETURN 42;\n",
		"--url", "root:nebula@"+address, "query", "--json",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, `"statement": "RETURN 42;"`)
	assert.Contains(t, stdout, `"int": 42`)
}

func TestQueryServerErrorIsRenderedAndReturned(t *testing.T) {
	address := startGraphServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "--url", "root:nebula@"+address, "query", "FETCH nothing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E_SYNTAX_ERROR")
	assert.Contains(t, stdout, "[ERROR (-7)]")
	assert.Contains(t, stdout, "syntax error near `FETCH'")
}

func TestQueryWithWrongPasswordFails(t *testing.T) {
	address := startGraphServer(t)

	_, _, err := executeCLI(t, t.TempDir(), "--url", "root:wrong@"+address, "query", "--json", "RETURN 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E_BAD_USERNAME_PASSWORD")
}

func TestQueryUsesProfileAndStoredCredential(t *testing.T) {
	address := startGraphServer(t, graphtest.WithUser("analyst", "s3cret"), graphtest.WithSpace("basketball"))
	home := t.TempDir()

	_, _, err := executeCLI(t, home,
		"profile", "add", "default",
		"--address", address,
		"--username", "analyst",
		"--password", "s3cret",
		"--space", "basketball",
	)
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "query", "--json", "RETURN true")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"space": "basketball"`)
	assert.Contains(t, stdout, `"bool": true`)
}

func TestProfileSelectedThroughEnvironment(t *testing.T) {
	address := startGraphServer(t)
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "add", "staging", "--address", address, "--password", "nebula")
	require.NoError(t, err)

	t.Setenv("NGC_PROFILE", "staging")
	stdout, _, err := executeCLI(t, home, "pool", "status", "--metrics=false")
	require.NoError(t, err)
	assert.Contains(t, stdout, "profile: staging")
}

func TestMissingProfileSuggestsAdding(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "spaces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not found")
	assert.Contains(t, err.Error(), "ngc profile add default")
}

func TestSchemaAndInsertFlow(t *testing.T) {
	server := graphtest.NewServer()
	address := serveGraph(t, server)
	home := t.TempDir()
	url := "root:nebula@" + address + "/basketball"

	stdout, _, err := executeCLI(t, home, "--url", "root:nebula@"+address, "schema", "space", "basketball", "--vid-fixed-string", "32")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created space basketball")

	stdout, _, err = executeCLI(t, home, "--url", url,
		"schema", "tag", "player",
		"--prop", "name:string:not-null",
		"--prop", "age:int:default=0",
		"--wait",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created tag player")

	_, _, err = executeCLI(t, home, "--url", url, "schema", "edge", "follow", "--prop", "degree:int")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "--url", url,
		"schema", "index", "player_by_name", "--on", "player", "--field", "name:10",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created tag index player_by_name on player")

	stdout, _, err = executeCLI(t, home, "--url", url,
		"insert", "vertex", "player", "player100", "player101",
		"--prop", "name=Tim Duncan",
		"--prop", "age=42",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Inserted 2 of 2 vertices")

	stdout, _, err = executeCLI(t, home, "--url", url,
		"insert", "edge", "follow", "player100", "player101", "--rank", "1", "--prop", "degree=95",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Inserted 1 of 1 edges")

	vertices, edges := server.Counts("basketball")
	assert.Equal(t, 2, vertices)
	assert.Equal(t, 1, edges)

	statements := strings.Join(server.Statements(), "\n")
	assert.Contains(t, statements, "vid_type = FIXED_STRING(32)")
	assert.Contains(t, statements, "`name` string NOT NULL")
	assert.Contains(t, statements, "`age` int NULL DEFAULT \"0\"")
	assert.Contains(t, statements, "ON `player`(`name`(10))")
	assert.Contains(t, statements, "INSERT VERTEX IF NOT EXISTS `player`(`age`, `name`) VALUES \"player100\":(42, \"Tim Duncan\");")
	assert.Contains(t, statements, "INSERT EDGE IF NOT EXISTS `follow`(`degree`) VALUES \"player100\"->\"player101\"@1:(95);")
}

func TestSchemaTagRejectsMalformedProperty(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--url", "root:nebula@127.0.0.1:1", "schema", "tag", "player", "--prop", "name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want name:type")
}

func TestSpacesListsServerSpaces(t *testing.T) {
	address := startGraphServer(t, graphtest.WithSpace("basketball"), graphtest.WithSpace("social"))

	stdout, _, err := executeCLI(t, t.TempDir(), "--url", "root:nebula@"+address, "spaces")
	require.NoError(t, err)
	assert.Equal(t, "basketball\nsocial\n", stdout)

	stdout, _, err = executeCLI(t, t.TempDir(), "--url", "root:nebula@"+address, "spaces", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `["basketball","social"]`, stdout)
}

func TestPoolStatusPrintsStatsAndMetrics(t *testing.T) {
	address := startGraphServer(t)

	stdout, stderr, err := executeCLI(t, t.TempDir(), "--url", "root:nebula@"+address, "pool", "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "connections: 2/10 (idle 2, borrowed 0)")
	assert.Contains(t, stdout, address+": 2")
	assert.Contains(t, stdout, `ngc_pool_connections{state="idle"} 2`)
	assert.Contains(t, stdout, "ngc_pool_connection_opens_total")
	assert.NotContains(t, stderr, "level=")
}

func TestPoolBenchRunsConcurrentSessions(t *testing.T) {
	server := graphtest.NewServer()
	address := serveGraph(t, server)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"--url", "root:nebula@"+address,
		"pool", "bench", "--sessions", "8", "--concurrency", "4", "--statement", "RETURN 1",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "sessions: 8")
	assert.Contains(t, stdout, "succeeded: 8")
	assert.Contains(t, stdout, "failed: 0")
	assert.Contains(t, stdout, "connections: ")
	assert.Equal(t, 8, server.Signouts())
}

func TestPoolBenchReportsFailures(t *testing.T) {
	address := startGraphServer(t)

	stdout, _, err := executeCLI(t, t.TempDir(),
		"--url", "root:nebula@"+address,
		"pool", "bench", "--sessions", "3", "--statement", "BOGUS",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 sessions failed")
	assert.Contains(t, stdout, "E_SYNTAX_ERROR: 3")
}

func TestLogLevelDebugWritesToStderr(t *testing.T) {
	address := startGraphServer(t)

	_, stderr, err := executeCLI(t, t.TempDir(), "--log-level", "debug", "--url", "root:nebula@"+address, "spaces", "--json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=debug")
	assert.Contains(t, stderr, "level=info")
}

func TestInvalidLogLevelIsRejected(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--log-level", "loud", "profile", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestUnknownSecretBackendIsRejected(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NGC_SECRET_BACKEND", "vault")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"profile", "list"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported secret backend \"vault\"")
}

func startGraphServer(t *testing.T, opts ...graphtest.Option) string {
	t.Helper()
	return serveGraph(t, graphtest.NewServer(opts...))
}

func serveGraph(t *testing.T, server *graphtest.Server) string {
	t.Helper()

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	return strings.TrimPrefix(httpServer.URL, "http://")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home string, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("NGC_SECRET_BACKEND", "file")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
