// FILE: lixenwraith/zconfig/dbsource/dbsource_test.go
package dbsource_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/zconfig"
	"github.com/lixenwraith/zconfig/dbsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func createDB(t *testing.T, rows map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE settings (k TEXT PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	for k, v := range rows {
		_, err = db.Exec(`INSERT INTO settings (k, v) VALUES (?, ?)`, k, v)
		require.NoError(t, err)
	}
	return path
}

func TestParseLocator(t *testing.T) {
	t.Run("AbsoluteFile", func(t *testing.T) {
		loc, err := dbsource.ParseLocator("sqlite:///var/lib/app/config.db/settings/k/v")
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/app/config.db", loc.File)
		assert.Equal(t, "settings", loc.Table)
		assert.Equal(t, "k", loc.KeyColumn)
		assert.Equal(t, "v", loc.ValColumn)
		assert.Empty(t, loc.Query)
	})

	t.Run("QueryString", func(t *testing.T) {
		loc, err := dbsource.ParseLocator("sqlite:///tmp/c.db/t/k/v?_pragma=busy_timeout(500)")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/c.db", loc.File)
		assert.Equal(t, "v", loc.ValColumn)
		assert.Equal(t, "_pragma=busy_timeout(500)", loc.Query)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, l := range []string{"postgres://h/db/t/k/v", "sqlite://t/k", "sqlite:///c.db//k/v"} {
			_, err := dbsource.ParseLocator(l)
			assert.Error(t, err, l)
		}
	})
}

func TestParserHandles(t *testing.T) {
	p := dbsource.New()
	assert.True(t, p.Handles("sqlite:///tmp/c.db/settings/k/v"))
	assert.False(t, p.Handles("/tmp/c.db"))
	assert.False(t, p.Handles("config.toml"))
}

func TestParserRead(t *testing.T) {
	path := createDB(t, map[string]string{
		"app.name":        "demo",
		"app":             "scalar first",
		"app.limits.rate": "10",
		"flat":            "value",
	})
	p := dbsource.New()

	data, err := p.Read("sqlite://"+path+"/settings/k/v", "")
	require.NoError(t, err)

	assert.Equal(t, "value", data["flat"])
	app, ok := data["app"].(map[string]any)
	require.True(t, ok, "longer keys refine shorter ones")
	assert.Equal(t, "demo", app["name"])
	assert.Equal(t, map[string]any{"rate": "10"}, app["limits"])
}

func TestParserReadMissing(t *testing.T) {
	path := createDB(t, nil)
	p := dbsource.New()

	tests := []struct {
		name    string
		locator string
	}{
		{"Database", "sqlite://" + filepath.Join(t.TempDir(), "nope.db") + "/settings/k/v"},
		{"Table", "sqlite://" + path + "/other/k/v"},
		{"KeyColumn", "sqlite://" + path + "/settings/key/v"},
		{"ValueColumn", "sqlite://" + path + "/settings/k/value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := p.Read(tt.locator, "")
			assert.ErrorIs(t, err, zconfig.ErrEmptyDocument)
			assert.Empty(t, data)
		})
	}
}

func TestLoadThroughConfig(t *testing.T) {
	path := createDB(t, map[string]string{"db.host": "localhost", "db.port": "5432"})

	cfg := zconfig.New()
	cfg.RegisterParser(dbsource.New())
	cfg.RegisterFile("sqlite://" + path + "/settings/k/v")
	require.NoError(t, cfg.Init())

	host, err := cfg.AsString("db.host")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)

	port, err := cfg.AsInt("db.port")
	require.NoError(t, err)
	assert.Equal(t, int64(5432), port)

	assert.Contains(t, cfg.LoadedFiles(), "sqlite://"+path+"/settings/k/v")
}
