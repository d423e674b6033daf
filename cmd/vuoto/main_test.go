package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuoto/vuoto/errdefs"
	"github.com/vuoto/vuoto/internal/config"
	"github.com/vuoto/vuoto/vaultindex"
)

func run(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPassphrase, "")

	var out bytes.Buffer
	c := newCLI()
	c.cfg = &config.Config{Home: home, CacheCapacity: 16, LogLevel: "warning"}
	c.out = &out
	c.log.SetOutput(io.Discard)
	c.readPassphrase = func() ([]byte, error) { return []byte("test-passphrase"), nil }

	cmd := newRootCommand(c)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVaultCommands(t *testing.T) {
	home := t.TempDir()

	_, err := run(t, home, "vault", "add", "personal")
	require.NoError(t, err)
	_, err = run(t, home, "vault", "add", "work")
	require.NoError(t, err)

	out, err := run(t, home, "vault", "list")
	require.NoError(t, err)
	assert.Equal(t, "personal\nwork\n", out)

	_, err = run(t, home, "vault", "rm", "personal")
	require.NoError(t, err)

	_, err = run(t, home, "vault", "rm", "personal")
	assert.ErrorContains(t, err, `vault "personal" not found`)

	out, err = run(t, home, "vault", "ls")
	require.NoError(t, err)
	assert.Equal(t, "work\n", out)

	_, err = os.Stat(filepath.Join(home, vaultindex.FileName))
	assert.NoError(t, err)
}

func TestVaultAddInvalidName(t *testing.T) {
	home := t.TempDir()
	for _, name := range []string{"a-name-well-over-sixteen-bytes", "ok\xff"} {
		_, err := run(t, home, "vault", "add", name)
		require.Error(t, err)
		assert.True(t, errdefs.IsInvalidInput(err))
	}

	out, err := run(t, home, "vault", "list")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestEntryCommands(t *testing.T) {
	home := t.TempDir()

	_, err := run(t, home, "entry", "set", "work", "github", "s3cret")
	assert.ErrorContains(t, err, `vault "work" not found`)

	_, err = run(t, home, "vault", "add", "work")
	require.NoError(t, err)
	_, err = run(t, home, "vault", "add", "work2")
	require.NoError(t, err)

	_, err = run(t, home, "entry", "set", "work", "github", "s3cret")
	require.NoError(t, err)
	_, err = run(t, home, "entry", "set", "work", "aws", "k3y")
	require.NoError(t, err)
	_, err = run(t, home, "entry", "set", "work2", "other", "x")
	require.NoError(t, err)

	out, err := run(t, home, "entry", "get", "work", "github")
	require.NoError(t, err)
	assert.Equal(t, "s3cret\n", out)

	_, err = run(t, home, "entry", "get", "work", "gitlab")
	assert.ErrorContains(t, err, `entry "gitlab" not found`)

	out, err = run(t, home, "entry", "list", "work")
	require.NoError(t, err)
	assert.Equal(t, "aws\ngithub\n", out)

	_, err = run(t, home, "entry", "set", "work", "", "v")
	assert.ErrorContains(t, err, "key is empty")
}

func TestEntryWrongPassphrase(t *testing.T) {
	home := t.TempDir()

	_, err := run(t, home, "vault", "add", "work")
	require.NoError(t, err)
	_, err = run(t, home, "entry", "set", "work", "github", "s3cret")
	require.NoError(t, err)

	c := newCLI()
	c.cfg = &config.Config{Home: home, CacheCapacity: 16, LogLevel: "warning"}
	c.out = io.Discard
	c.log.SetOutput(io.Discard)
	t.Setenv(config.EnvPassphrase, "not-the-passphrase")

	cmd := newRootCommand(c)
	cmd.SetArgs([]string{"entry", "get", "work", "github"})
	err = cmd.Execute()
	require.Error(t, err)
	assert.True(t, errdefs.IsInvalidData(err))
}

func TestInvalidLogLevel(t *testing.T) {
	c := newCLI()
	c.cfg = &config.Config{Home: t.TempDir(), LogLevel: "loud"}
	c.out = io.Discard

	cmd := newRootCommand(c)
	cmd.SetArgs([]string{"vault", "list"})
	assert.ErrorContains(t, cmd.Execute(), "invalid log level")
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "vuoto v0.1.0\n", out)
}
