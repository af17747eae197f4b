package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.True(t, c.Session.AutomaticReload)
	assert.Equal(t, 10, c.Histogram.Bins)
	assert.Equal(t, DefaultServerPort, c.Server.PortOrDefault())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.toml")
	content := `
[server]
port = 8080

[session]
automatic_reload = false

[graph]
layout_algorithm = "circular"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Server.PortOrDefault())
	assert.False(t, c.Session.AutomaticReload)
	assert.Equal(t, "circular", c.Graph.LayoutAlgorithm)
}

func TestValidateRejectsZeroPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsUnknownLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph]\nlayout_algorithm = \"warp\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coda.toml")
	require.NoError(t, WriteDefault(path))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Histogram.Bins)

	// Refuses to clobber.
	require.Error(t, WriteDefault(path))
}
