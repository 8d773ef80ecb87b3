//go:build !integration

package cli

import (
	"testing"
	"time"

	"github.com/aihub-tools/aihub-export/pkg/catalog"
	"github.com/aihub-tools/aihub-export/pkg/constants"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConfigCommand returns a command carrying the global flags and a --locale flag.
func newConfigCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := &cobra.Command{Use: "test"}
	AddConfigFlags(cmd)
	cmd.Flags().String("locale", constants.DefaultLocale, "")
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(newConfigCommand(t))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultServerURL, cfg.Server)
	assert.Equal(t, constants.DefaultLocale, cfg.Locale)
	assert.Equal(t, constants.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, constants.DefaultCatalogTTL, cfg.CatalogTTL)
	assert.Empty(t, cfg.CatalogFile)
}

func TestLoadConfig_Precedence(t *testing.T) {
	cmd := newConfigCommand(t)
	writeFile(t, ".", constants.ConfigFileName+".yaml", "server: http://from-file:8188\nlocale: fr\ntimeout: 5s\ncatalog_ttl: 1m\n")
	t.Setenv("AIHUB_LOCALE", "de")
	t.Setenv("AIHUB_TIMEOUT", "7s")
	require.NoError(t, cmd.PersistentFlags().Set("timeout", "9s"))

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8188", cfg.Server, "file overrides defaults")
	assert.Equal(t, "de", cfg.Locale, "environment overrides the file")
	assert.Equal(t, 9*time.Second, cfg.Timeout, "flags override the environment")
	assert.Equal(t, time.Minute, cfg.CatalogTTL)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	cmd := newConfigCommand(t)
	path := writeFile(t, t.TempDir(), "custom.yaml", "server: http://custom:9000/\ncatalog_file: models.yaml\n")
	require.NoError(t, cmd.PersistentFlags().Set("config", path))

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://custom:9000", cfg.Server, "trailing slash is trimmed")
	assert.Equal(t, catalog.FileSource{Path: "models.yaml"}, cfg.CatalogSource(), "a catalog file replaces the server catalog")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	cmd := newConfigCommand(t)
	require.NoError(t, cmd.PersistentFlags().Set("config", "/nonexistent/aihub.yaml"))

	_, err := LoadConfig(cmd)
	require.Error(t, err, "an explicit config file must exist")
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoadConfig_BlankLocaleFallsBack(t *testing.T) {
	cmd := newConfigCommand(t)
	require.NoError(t, cmd.Flags().Set("locale", "  "))

	cfg, err := LoadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLocale, cfg.Locale)
}

func TestConfig_CatalogSource(t *testing.T) {
	cfg := &Config{Server: "http://127.0.0.1:8188", Timeout: time.Second, CatalogTTL: time.Minute}

	source, ok := cfg.CatalogSource().(*catalog.HTTPSource)
	require.True(t, ok, "without a catalog file the server is used")
	assert.Equal(t, "http://127.0.0.1:8188", source.BaseURL)
	assert.NotNil(t, cfg.CachedCatalogSource())
}
