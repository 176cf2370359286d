// FILE: lixenwraith/zconfig/ref_test.go
package zconfig

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRefFollowsGeneration tests that references recompute only after a load
func TestRefFollowsGeneration(t *testing.T) {
	env := map[string]string{"MODE": "blue"}
	cfg := New(WithLookupEnv(mapEnv(env)))
	cfg.RegisterEnvVar("MODE", "mode")
	require.NoError(t, cfg.Init())

	mode := cfg.StringRef("mode")
	assert.Equal(t, "blue", mode.Value())
	assert.Equal(t, "blue", mode.String())

	env["MODE"] = "green"
	assert.Equal(t, "blue", mode.Value(), "cached until the next load")

	require.NoError(t, cfg.Set("mode", "manual"))
	assert.Equal(t, "blue", mode.Value(), "direct writes do not bump the generation")

	require.NoError(t, cfg.Reload())
	assert.Equal(t, "green", mode.Value())
	assert.True(t, mode.Equal("green"))
	assert.True(t, mode.Truthy())
}

// TestRefConstructors tests each typed reference against its accessor
func TestRefConstructors(t *testing.T) {
	cfg := New()
	cfg.SetDefaults(Map{
		"int":      "12",
		"float":    "1.5",
		"decimal":  "0.10",
		"bool":     "off",
		"date":     "2020-02-03",
		"datetime": "2020-02-03T04:05:06Z",
		"bytes":    "1k",
		"duration": "2m",
		"path":     "/tmp/../etc",
		"list":     "a,b",
		"dict":     Map{"k": "v"},
		"bad":      "x",
	})
	require.NoError(t, cfg.Init())

	assert.Equal(t, int64(12), cfg.IntRef("int").Value())
	assert.Equal(t, 1.5, cfg.FloatRef("float").Value())
	assert.True(t, cfg.DecimalRef("decimal").Equal(decimal.RequireFromString("0.1")))
	assert.False(t, cfg.BoolRef("bool").Value())
	assert.True(t, cfg.DateRef("date").Equal(time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC)))
	assert.True(t, cfg.DateTimeRef("datetime").Equal(time.Date(2020, 2, 3, 4, 5, 6, 0, time.UTC)))
	assert.Equal(t, float64(1024), cfg.BytesRef("bytes").Value())
	assert.Equal(t, 2*time.Minute, cfg.DurationRef("duration").Value())
	assert.Equal(t, "/etc", cfg.PathRef("path").Value())
	assert.Equal(t, []any{"a", "b"}, cfg.ListRef("list").Value())
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, cfg.SetRef("list").Value())
	assert.Equal(t, map[string]any{"k": "v"}, cfg.DictRef("dict").Value())

	t.Run("Errors", func(t *testing.T) {
		ref := cfg.IntRef("bad")
		_, err := ref.Get()
		assert.ErrorIs(t, err, ErrCoercion)
		assert.Equal(t, int64(0), ref.Value())
		assert.False(t, ref.Truthy())
	})

	t.Run("Options", func(t *testing.T) {
		assert.Equal(t, int64(3), cfg.IntRef("missing", WithDefault(3)).Value())
		_, err := cfg.StringRef("missing", Required()).Get()
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

// TestNewRef tests custom computations
func TestNewRef(t *testing.T) {
	cfg := New()
	cfg.SetDefaults(Map{"host": "h", "port": 80})
	require.NoError(t, cfg.Init())

	calls := 0
	addr := NewRef(cfg, func(c *Config) (string, error) {
		calls++
		host, _ := c.AsString("host")
		port, _ := c.AsInt("port")
		return fmt.Sprintf("%s:%d", host, port), nil
	})

	addr.Value()
	addr.Value()
	assert.Equal(t, 1, calls)

	require.NoError(t, cfg.Reload())
	addr.Value()
	assert.Equal(t, 2, calls)
}
