package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"SERVER_HOST", "HTTP_PATH", "TOKEN", "NOTEBOOK_PATH", "CLUSTER_ID", "JOBS_API_URL",
	"HTTP_ADDR", "CORS_ALLOWED_ORIGINS", "JOB_TIMEZONE", "JOBS_API_TIMEOUT",
	"QUERY_TIMEOUT", "HTTP_SHUTDOWN_TIMEOUT", "METRICS_ENABLED", "METRICS_PATH",
	"METRICS_PORT", "REDIS_ADDR", "ANALYTICS_RETENTION", "CIRCUIT_BREAKER_THRESHOLD",
	"CIRCUIT_BREAKER_COOLDOWN", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedEnv {
		t.Setenv(k, "")
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_HOST", "adb-123.azuredatabricks.net")
	t.Setenv("HTTP_PATH", "/sql/1.0/warehouses/abc")
	t.Setenv("TOKEN", "dapi-secret")
	t.Setenv("NOTEBOOK_PATH", "/Shared/checker")
	t.Setenv("CLUSTER_ID", "0115-093000-abcd1234")
}

// execute runs the root command with no .env lookup and captures its output.
func execute(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", ""}, args...))

	code = exitSuccess
	if err := root.Execute(); err != nil {
		code = exitRuntimeError
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		errOut.WriteString(err.Error())
	}
	return out.String(), errOut.String(), code
}

func TestValidate_OK(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	out, _, code := execute(t, "validate")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "configuration valid")
}

func TestValidate_MissingRequired(t *testing.T) {
	clearEnv(t)

	_, errOut, code := execute(t, "validate")
	assert.Equal(t, exitInvalidConfig, code)
	assert.Contains(t, errOut, "SERVER_HOST: required")
	assert.Contains(t, errOut, "CLUSTER_ID: required")
}

func TestServe_InvalidConfigExitsBeforeListening(t *testing.T) {
	clearEnv(t)
	setRequired(t)
	t.Setenv("JOB_TIMEZONE", "Mars/Olympus")

	_, errOut, code := execute(t, "serve")
	assert.Equal(t, exitInvalidConfig, code)
	assert.Contains(t, errOut, "JOB_TIMEZONE")
}

func TestConfig_MasksToken(t *testing.T) {
	clearEnv(t)
	setRequired(t)

	out, _, code := execute(t, "config")
	require.Equal(t, exitSuccess, code)
	assert.NotContains(t, out, "dapi-secret")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "dapi***", decoded["token"])
	assert.Equal(t, "adb-123.azuredatabricks.net", decoded["server_host"])
}

func TestVersion(t *testing.T) {
	out, _, code := execute(t, "version")
	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, "checkerhub version dev (commit: unknown)\n", out)
}

func TestUnknownCommand(t *testing.T) {
	_, _, code := execute(t, "launch")
	assert.Equal(t, exitRuntimeError, code)
}

func TestRun_ExitCodes(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, exitInvalidConfig, run([]string{"--env-file", "", "validate"}))
	assert.Equal(t, exitSuccess, run([]string{"--env-file", "", "version"}))
	assert.Equal(t, exitRuntimeError, run([]string{"--env-file", "", "nope"}))
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even if empty.
	require.NoError(t, os.Unsetenv("CLUSTER_ID"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CLUSTER_ID=from-file\nSERVER_HOST=from-file\n"), 0o600))
	t.Setenv("SERVER_HOST", "from-env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("CLUSTER_ID"))
	assert.Equal(t, "from-env", os.Getenv("SERVER_HOST"))
}

func TestLoadEnvFile_MissingIsIgnored(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	assert.NoError(t, loadEnvFile(""))
}
