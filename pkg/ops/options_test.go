package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedirra/nmb/pkg/engine"
)

func TestGetDefaultOptions(t *testing.T) {
	opts := GetDefaultOptions()

	assert.Equal(t, "nmb.yml", opts.ConfigPath)
	assert.NotNil(t, opts.Logger)
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nmb.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(
		"catalog: https://example.com/modules\nstorage: /var/lib/nmb\n",
	), 0o644))

	opts, err := GetDefaultOptions().Apply(
		WithConfigPath(configPath),
		WithStorage("/srv/nmb"),
		WithLogLevel("debug"),
	)
	require.NoError(t, err)

	config, err := opts.loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/modules", config.Catalog)
	assert.Equal(t, "/srv/nmb", config.Storage)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, engine.DefaultConfig().RemoteDir, config.RemoteDir)
}

func TestLoadConfigRejectsInvalidLogLevel(t *testing.T) {
	opts, err := GetDefaultOptions().Apply(WithLogLevel("noisy"))
	require.NoError(t, err)

	_, err = opts.loadConfig()
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLoadConfigRejectsInvalidCatalog(t *testing.T) {
	opts, err := GetDefaultOptions().Apply(WithCatalog("not a url"))
	require.NoError(t, err)

	_, err = opts.loadConfig()
	assert.ErrorContains(t, err, "catalog must be a valid URL")
}
