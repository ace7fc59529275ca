package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "nmb.yml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultCatalogURL, config.Catalog)
	assert.Equal(t, ".", config.Storage)
	assert.Equal(t, "/tmp", config.RemoteDir)
	require.NoError(t, config.Verify())
}

func TestLoadConfigKeepsDefaultsForUnsetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmb.yml")
	require.NoError(t, os.WriteFile(path, []byte(`storage: /srv/nmb
ssh:
  user: operator
  port: 2222
`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/nmb", config.Storage)
	assert.Equal(t, "operator", config.SSH.User)
	assert.Equal(t, 2222, config.SSH.Port)
	assert.Equal(t, DefaultCatalogURL, config.Catalog)
	assert.Equal(t, "/tmp", config.RemoteDir)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nmb.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigMergeOverrides(t *testing.T) {
	config := DefaultConfig()

	require.NoError(t, config.Merge(&Config{
		Catalog: "https://api.github.com/repos/acme/kit/contents/modules",
	}))

	assert.Equal(t, "https://api.github.com/repos/acme/kit/contents/modules", config.Catalog)
	assert.Equal(t, ".", config.Storage)
}

func TestConfigVerify(t *testing.T) {
	var nilConfig *Config
	assert.Error(t, nilConfig.Verify())

	config := DefaultConfig()
	require.NoError(t, config.Verify())

	config = DefaultConfig()
	config.Catalog = ""
	assert.ErrorContains(t, config.Verify(), "no catalog")

	config = DefaultConfig()
	config.Catalog = "not a url"
	assert.ErrorContains(t, config.Verify(), "valid URL")

	config = DefaultConfig()
	config.RemoteDir = "relative/dir"
	assert.ErrorContains(t, config.Verify(), "absolute")

	config = DefaultConfig()
	config.Storage = ""
	assert.ErrorContains(t, config.Verify(), "storage")
}
