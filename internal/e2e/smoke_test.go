package e2e

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/nebula-graph-cli/internal/adapters/transport/graphtest"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	graph := graphtest.NewServer(graphtest.WithSpace("basketball", "player"))
	server := httptest.NewServer(graph.Handler())
	t.Cleanup(server.Close)
	address := strings.TrimPrefix(server.URL, "http://")

	require.NoError(t, writeProfilesFixture(home, address))

	_, stderr, err := runNGC(t, binaryPath, home, "credential", "set", "--value", "nebula")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runNGC(t, binaryPath, home, "query", "--json", "SHOW TAGS")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"space": "basketball"`)
	assert.Contains(t, stdout, `"str": "player"`)

	stdout, stderr, err = runNGC(t, binaryPath, home, "pool", "status", "--metrics=false")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "profile: default")
	assert.Contains(t, stdout, "connections: 1/3")

	assert.Zero(t, graph.ActiveSessions())
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "ngc-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/ngc")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build ngc binary: %s", string(output))
	return binaryPath
}

func runNGC(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "NGC_SECRET_BACKEND=file")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writeProfilesFixture(home, address string) error {
	configDir := filepath.Join(home, ".nebula")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	profiles := fmt.Sprintf(`version = 1

[[profiles]]
name = "default"
addresses = [%q]
min_size = 1
max_size = 3
connect_timeout = "2s"
username = "root"
password_ref = "nebula/default/root"
space = "basketball"
`, address)

	return os.WriteFile(filepath.Join(configDir, "profiles.toml"), []byte(profiles), 0o600)
}
