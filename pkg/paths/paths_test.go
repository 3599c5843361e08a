package paths

import (
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigDir, "/custom/config")
	t.Setenv(EnvDataDir, "/custom/data")
	t.Setenv(EnvStateDir, "/custom/state")

	p := New()
	assert.Equal(t, "/custom/config", p.ConfigDir())
	assert.Equal(t, "/custom/data", p.DataDir())
	assert.Equal(t, "/custom/state", p.StateDir())
	assert.Equal(t, filepath.Join("/custom/config", ConfigFileName), p.ConfigFile())
	assert.Equal(t, filepath.Join("/custom/state", SitesFileName), p.SitesFile())
	assert.Equal(t, filepath.Join("/custom/state", RegistryFileName), p.RegistryFile())
	assert.Equal(t, filepath.Join("/custom/state", LogFileName), p.LogFile())
}

func TestNew_XDGDefaults(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	t.Setenv(EnvStateDir, "")

	p := New()
	assert.Equal(t, AppDirName, filepath.Base(p.ConfigDir()))
	assert.Equal(t, AppDirName, filepath.Base(p.StateDir()))
	assert.True(t, filepath.IsAbs(p.StateDir()))
}

func TestExpandHome(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "sites"), ExpandHome("~/sites"))
	assert.Equal(t, "/abs/path", ExpandHome("/abs/path"))
	assert.Equal(t, "relative", ExpandHome("relative"))
	assert.Equal(t, "", ExpandHome(""))
	assert.Equal(t, "~other/path", ExpandHome("~other/path"))
}
