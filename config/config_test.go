package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	oldPath := ConfigFilePath
	ConfigFilePath = filepath.Join(t.TempDir(), "pricecmp_config.toml")
	t.Cleanup(func() {
		ConfigFilePath = oldPath
		mu.Lock()
		cfg = Default()
		mu.Unlock()
	})
	return ConfigFilePath
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	useTempConfig(t)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 20, c.TopN)
	assert.Equal(t, "mfr_part", c.Columns.InternalPartNumber)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := useTempConfig(t)
	content := `
top_n = 10
open_browser = false

[columns]
internal_price = "Cost"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, c.TopN)
	assert.False(t, c.OpenBrowser)
	assert.True(t, c.HistoryEnabled)
	assert.Equal(t, "Cost", c.Columns.InternalPrice)
	assert.Equal(t, "Discounted Price", c.Columns.CompetitorPrice)
	assert.Equal(t, c, GetConfig())
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := useTempConfig(t)
	require.NoError(t, os.WriteFile(path, []byte("top_n = = 3"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	useTempConfig(t)

	c := Default()
	c.TopN = 0
	c.CSVEncoding = "shift_jis"
	c.Labels.Internal = "ours"
	require.NoError(t, SaveConfig(c))

	saved := GetConfig()
	assert.Equal(t, 20, saved.TopN)
	assert.Equal(t, "ours", saved.Labels.Internal)

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}
