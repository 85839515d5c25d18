package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/larkwiot/shelfscan/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
[backend]
url = "https://library.example.com"
`

func TestDefaultsApplied(t *testing.T) {
	conf, err := config.Parse(minimal)
	require.NoError(t, err)

	assert.Equal(t, "library.barcode.scan", conf.Backend.Model)
	assert.Equal(t, "create_and_process", conf.Backend.Method)
	assert.Equal(t, uint(30), conf.Advanced.HealthCheckIntervalSeconds)
	assert.True(t, conf.Notify.Color)
	assert.Equal(t, uint(0), conf.Backend.TimeoutSeconds)
}

func TestFullConfig(t *testing.T) {
	conf, err := config.Parse(`
[backend]
url = "http://localhost:8069"
database = "library"
login = "desk"
password = "secret"
timeout_seconds = 5

[scanner]
prefix = "]C1"
member_prefix = "MEM"

[notify]
color = false
bell = true

[journal]
path = "~/scans.json"
`)
	require.NoError(t, err)

	assert.Equal(t, "library", conf.Backend.Database)
	assert.Equal(t, uint(5), conf.Backend.TimeoutSeconds)
	assert.Equal(t, "]C1", conf.Scanner.Prefix)
	assert.Equal(t, "MEM", conf.Scanner.MemberPrefix)
	assert.False(t, conf.Notify.Color)
	assert.True(t, conf.Notify.Bell)
	assert.Equal(t, "~/scans.json", conf.Journal.Path)
}

func TestMissingUrl(t *testing.T) {
	_, err := config.Parse("[scanner]\nmember_prefix = \"MEM\"\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.url")
}

func TestBadUrlScheme(t *testing.T) {
	_, err := config.Parse("[backend]\nurl = \"ftp://library.example.com\"\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http(s)")
}

func TestLoginRequiresDatabaseAndPassword(t *testing.T) {
	_, err := config.Parse(`
[backend]
url = "https://library.example.com"
login = "desk"
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.database")
	assert.Contains(t, err.Error(), "backend.password")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SHELFSCAN_URL", "https://override.example.com")
	t.Setenv("SHELFSCAN_PASSWORD", "from-env")

	conf, err := config.Parse(`
[backend]
url = "https://library.example.com"
database = "library"
login = "desk"
`)
	require.NoError(t, err)

	assert.Equal(t, "https://override.example.com", conf.Backend.Url)
	assert.Equal(t, "from-env", conf.Backend.Password)
}

func TestNewConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelfscan.toml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0600))

	conf, err := config.NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://library.example.com", conf.Backend.Url)

	_, err = config.NewConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
