package runtimeconfig

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webRoot = "/sites/sc/Website"

const baseWebConfig = `<configuration>
  <sitecore>
    <sc.variable name="dataFolder" value="/App_Data" />
    <settings>
      <setting name="Media.MediaLinkPrefix" value="~/media" />
    </settings>
  </sitecore>
</configuration>`

func write(t *testing.T, fs afero.Fs, rel, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(webRoot, rel), []byte(content), 0644))
}

func newAccessor(t *testing.T) (*Accessor, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	write(t, fs, "web.config", baseWebConfig)
	return New(webRoot, Options{FS: fs, Logger: zerolog.New(zerolog.NewTestWriter(t))}), fs
}

func TestIncludeFiles_SortedByRelativePath(t *testing.T) {
	a, fs := newAccessor(t)
	write(t, fs, "App_Config/Include/z.config", `<configuration/>`)
	write(t, fs, "App_Config/Include/Modules/b.config", `<configuration/>`)
	write(t, fs, "App_Config/Include/a.config", `<configuration/>`)
	write(t, fs, "App_Config/Include/readme.txt", `ignored`)
	write(t, fs, "App_Config/Include/old.config.disabled", `ignored`)

	files, err := a.IncludeFiles()
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		rel = append(rel, strings.TrimPrefix(filepath.ToSlash(f), webRoot+"/App_Config/Include/"))
	}
	assert.Equal(t, []string{"Modules/b.config", "a.config", "z.config"}, rel)
}

func TestIncludeFiles_NoIncludeDir(t *testing.T) {
	a, _ := newAccessor(t)
	files, err := a.IncludeFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestEffectiveSettingsAndVariables(t *testing.T) {
	a, fs := newAccessor(t)
	write(t, fs, "App_Config/Include/DataFolder.config",
		`<configuration><sitecore><sc.variable name="dataFolder" value="/data" /></sitecore></configuration>`)
	write(t, fs, "App_Config/Include/Custom.config",
		`<configuration><sitecore><settings><setting name="Custom.Flag" value="true" /></settings></sitecore></configuration>`)

	v, err := a.Variable("dataFolder")
	require.NoError(t, err)
	assert.Equal(t, "/data", v)

	s, err := a.Setting("custom.flag")
	require.NoError(t, err)
	assert.Equal(t, "true", s)

	s, err = a.Setting("Media.MediaLinkPrefix")
	require.NoError(t, err)
	assert.Equal(t, "~/media", s)

	_, err = a.Setting("Missing")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	assert.Contains(t, err.Error(), "failed to get Missing sitecore setting of "+webRoot)

	_, err = a.Variable("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestEffective_ErrorsCarryWebRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := New(webRoot, Options{FS: fs})

	_, err := a.Effective()
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrFileNotFound))
	assert.Equal(t, webRoot, errors.GetErrorDetails(err)["web_root"])

	write(t, fs, "web.config", baseWebConfig)
	write(t, fs, "App_Config/Include/bad.config", `<configuration a=></configuration>`)
	_, err = a.Effective()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrXMLParse))
	assert.Contains(t, err.Error(), "failed to get showconfig of "+webRoot)
}

func TestDiff(t *testing.T) {
	a, fs := newAccessor(t)

	diff, truncated, err := a.Diff(DefaultDiffMaxLines)
	require.NoError(t, err)
	assert.Empty(t, diff)
	assert.False(t, truncated)

	write(t, fs, "App_Config/Include/Custom.config",
		`<configuration><sitecore><settings><setting name="Custom.Flag" value="true" /></settings></sitecore></configuration>`)
	diff, truncated, err = a.Diff(DefaultDiffMaxLines)
	require.NoError(t, err)
	assert.False(t, truncated)
	assert.Contains(t, diff, "--- web.config")
	assert.Contains(t, diff, `+      <setting name="Custom.Flag" value="true"/>`)

	diff, truncated, err = a.Diff(2)
	require.NoError(t, err)
	assert.True(t, truncated)
	assert.Contains(t, diff, "truncated to 2 lines")
}

func TestDatabases(t *testing.T) {
	a, fs := newAccessor(t)
	write(t, fs, "App_Config/ConnectionStrings.config", `<connectionStrings>
  <add name="core" connectionString="Data Source=.;Initial Catalog=core" />
  <add name="analytics" connectionString="mongodb://localhost/analytics" />
</connectionStrings>`)

	dbs, err := a.Databases()
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "core", dbs[0].Name)
	assert.False(t, dbs[0].Mongo)
	assert.True(t, dbs[1].Mongo)
}
