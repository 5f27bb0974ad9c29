package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kira8ke/GloHub/internal/config"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestDotEnvReachesFlags(t *testing.T) {
	for _, key := range []string{"CHARADES_PORT", "CHARADES_BIND", "CHARADES_VERBOSE", "CHARADES_FINISHED_RETENTION"} {
		unsetEnv(t, key)
	}
	path := filepath.Join(t.TempDir(), ".env")
	env := "CHARADES_PORT=9191\nCHARADES_BIND=127.0.0.1\nCHARADES_VERBOSE=true\nCHARADES_FINISHED_RETENTION=2m\n"
	require.NoError(t, os.WriteFile(path, []byte(env), 0o600))
	require.NoError(t, config.LoadDotEnv(path))

	cmd := newCmd()
	port, err := cmd.Flags().GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 9191, port)
	bind, err := cmd.Flags().GetString("bind")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", bind)
	verbose, err := cmd.Flags().GetBool("verbose")
	require.NoError(t, err)
	assert.True(t, verbose)
	retention, err := cmd.Flags().GetDuration("finished-retention")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, retention)
}

func TestInvalidPortFromEnvIsRejected(t *testing.T) {
	t.Setenv("CHARADES_PORT", "70000")
	cmd := newCmd()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}
