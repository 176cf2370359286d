// FILE: lixenwraith/zconfig/builder_test.go
package zconfig

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

// TestBuilder tests the builder pattern
func TestBuilder(t *testing.T) {
	t.Run("BasicBuilder", func(t *testing.T) {
		type Config struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}

		cfg, err := NewBuilder().
			WithArgs(nil).
			WithDefaults(&Config{Host: "localhost", Port: 8080}).
			Build()

		require.NoError(t, err)
		assert.True(t, cfg.IsInitialized())

		val, err := cfg.Get("host")
		require.NoError(t, err)
		assert.Equal(t, "localhost", val)

		port, err := cfg.AsInt("port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("NestedStructDefaults", func(t *testing.T) {
		type Config struct {
			Database struct {
				Host string `toml:"host"`
				Port int    `toml:"port"`
			} `toml:"db"`
		}
		var defaults Config
		defaults.Database.Host = "dbhost"
		defaults.Database.Port = 5432

		cfg, err := NewBuilder().WithDefaults(defaults).Build()
		require.NoError(t, err)

		host, err := cfg.AsString("db.host")
		require.NoError(t, err)
		assert.Equal(t, "dbhost", host)
	})

	t.Run("BuilderWithAllOptions", func(t *testing.T) {
		dir := t.TempDir()
		defaultFile := writeTestFile(t, dir, "default.toml", "host = \"defaulthost\"\nport = 1000\nname = \"default\"\n")
		regularFile := writeTestFile(t, dir, "regular.yaml", "host: filehost\nport: 2000\n")
		envFile := writeTestFile(t, dir, "env.json", `{"port": 3000}`)

		core, logs := observer.New(zapcore.DebugLevel)
		env := mapEnv(map[string]string{
			"APP_CONFIG":  envFile,
			"APP_TIMEOUT": "45s",
		})

		cfg, err := NewBuilder().
			WithDefaults(Map{"host": "builtin", "timeout": "10s", "log": Map{"level": "info"}}).
			WithLogger(zap.New(core)).
			WithLookupEnv(env).
			WithDefaultFile(defaultFile).
			WithFile(regularFile).
			WithEnvFile("APP_CONFIG").
			WithEnvVar("APP_TIMEOUT", "timeout").
			Build()
		require.NoError(t, err)

		host, _ := cfg.AsString("host")
		assert.Equal(t, "filehost", host)
		port, _ := cfg.AsInt("port")
		assert.Equal(t, int64(3000), port)
		name, _ := cfg.AsString("name")
		assert.Equal(t, "default", name)
		level, _ := cfg.AsString("log.level")
		assert.Equal(t, "info", level)
		timeout, _ := cfg.AsString("timeout")
		assert.Equal(t, "45s", timeout)

		assert.Len(t, cfg.LoadedFiles(), 3)
		assert.Equal(t, 1, logs.FilterMessage("configuration loaded").Len())
	})

	t.Run("BuilderWithEncoding", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestFile(t, dir, "latin.toml", "name = \"caf\xe9\"\n")

		cfg, err := NewBuilder().WithEncoding("latin-1").WithFile(path).Build()
		require.NoError(t, err)

		name, _ := cfg.AsString("name")
		assert.Equal(t, "café", name)
	})

	t.Run("BuilderWithParser", func(t *testing.T) {
		path := writeTestFile(t, t.TempDir(), "app.static", "ignored")
		cfg, err := NewBuilder().
			WithParser(staticParser{ext: ".static", data: map[string]any{"source": "static"}}).
			WithFile(path).
			Build()
		require.NoError(t, err)

		src, _ := cfg.AsString("source")
		assert.Equal(t, "static", src)
	})

	t.Run("BuilderWithSecretProvider", func(t *testing.T) {
		provider := SecretProviderFunc(func(locator string) (string, error) {
			return "secret-for-" + locator, nil
		})

		cfg, err := NewBuilder().
			WithSecretProvider("vault", provider).
			WithConfigurer(func(c *Config) error {
				c.RegisterSecret("vault", "db/password", "db.password")
				return nil
			}).
			Build()
		require.NoError(t, err)

		pass, _ := cfg.AsString("db.password")
		assert.Equal(t, "secret-for-db/password", pass)
	})

	t.Run("BuilderWithValidator", func(t *testing.T) {
		type UserConfig struct {
			Port int `toml:"port"`
		}

		validatorCalled := false
		validator := func(cfg *Config) error {
			validatorCalled = true
			port, err := cfg.AsInt("port", Required())
			if err != nil {
				return err
			}
			if port < 1024 {
				return fmt.Errorf("port %d is below 1024", port)
			}
			return nil
		}

		cfg, err := NewBuilder().
			WithDefaults(&UserConfig{Port: 8080}).
			WithValidator(validator).
			Build()
		require.NoError(t, err)
		assert.NotNil(t, cfg)
		assert.True(t, validatorCalled)

		validatorCalled = false
		cfg2, err := NewBuilder().
			WithDefaults(&UserConfig{Port: 80}).
			WithValidator(validator).
			Build()
		assert.Nil(t, cfg2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration validation failed")
		assert.True(t, validatorCalled)
	})

	t.Run("BuilderErrors", func(t *testing.T) {
		_, err := NewBuilder().WithDefaults("not-a-struct").Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register defaults")

		_, err = NewBuilder().
			WithConfigurer(func(*Config) error { return fmt.Errorf("no vault") }).
			Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configurer failed: no vault")

		dir := t.TempDir()
		bad := writeTestFile(t, dir, "bad.toml", "this is = = not toml")
		_, err = NewBuilder().WithFile(bad).Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse TOML config file")
	})

	t.Run("MustBuildPanic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			cfg := NewBuilder().
				WithDefaults(struct{ Port int }{Port: 8080}).
				MustBuild()
			assert.NotNil(t, cfg)
		})

		assert.Panics(t, func() {
			NewBuilder().
				WithConfigurer(func(*Config) error { return fmt.Errorf("fail") }).
				MustBuild()
		})
	})

	t.Run("BuildAndScan", func(t *testing.T) {
		type Server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		}
		type AppConfig struct {
			Server Server `toml:"server"`
			Debug  bool   `toml:"debug"`
		}

		dir := t.TempDir()
		path := writeTestFile(t, dir, "app.toml", "debug = true\n[server]\nport = 9090\n")

		var target AppConfig
		err := NewBuilder().
			WithDefaults(AppConfig{Server: Server{Host: "localhost", Port: 8080}}).
			WithFile(path).
			BuildAndScan(&target)
		require.NoError(t, err)
		assert.Equal(t, "localhost", target.Server.Host)
		assert.Equal(t, 9090, target.Server.Port)
		assert.True(t, target.Debug)

		err = NewBuilder().BuildAndScan(target)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan final config into target")
	})
}

// TestFileDiscovery tests automatic config file discovery
func TestFileDiscovery(t *testing.T) {
	isolate := func(t *testing.T) string {
		t.Helper()
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
		t.Setenv("MYAPP_CONFIG", "")
		t.Chdir(t.TempDir())
		return xdg
	}

	defaults := struct {
		Test string `toml:"test"`
	}{Test: "default"}

	t.Run("DiscoveryWithCLIFlag", func(t *testing.T) {
		isolate(t)
		configFile := writeTestFile(t, t.TempDir(), "custom.toml", `test = "value"`)

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs([]string{"--config", configFile}).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "value", val)
	})

	t.Run("DiscoveryWithCLIFlagEquals", func(t *testing.T) {
		isolate(t)
		configFile := writeTestFile(t, t.TempDir(), "custom.yaml", "test: yamlvalue\n")

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs([]string{"-v", "--config=" + configFile}).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "yamlvalue", val)
	})

	t.Run("DiscoveryWithEnvVar", func(t *testing.T) {
		isolate(t)
		configFile := writeTestFile(t, t.TempDir(), "env.toml", `test = "envvalue"`)
		t.Setenv("MYAPP_CONFIG", configFile)

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs(nil).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "envvalue", val)
	})

	t.Run("DiscoveryInCurrentDir", func(t *testing.T) {
		isolate(t)
		writeTestFile(t, ".", "myapp.toml", `test = "cwdvalue"`)

		opts := FileDiscoveryOptions{
			Name:          "myapp",
			Extensions:    []string{".toml"},
			UseCurrentDir: true,
		}

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs(nil).
			WithFileDiscovery(opts).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "cwdvalue", val)
	})

	t.Run("DiscoveryInXDG", func(t *testing.T) {
		xdg := isolate(t)
		writeTestFile(t, filepath.Join(xdg, "myapp"), "myapp.json", `{"test": "xdgvalue"}`)

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs(nil).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "xdgvalue", val)
	})

	t.Run("DiscoveryPrecedence", func(t *testing.T) {
		isolate(t)
		dir := t.TempDir()
		cliFile := writeTestFile(t, dir, "cli.toml", `test = "clifile"`)
		envFile := writeTestFile(t, dir, "env.toml", `test = "envfile"`)
		t.Setenv("MYAPP_CONFIG", envFile)

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs([]string{"--config", cliFile}).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "clifile", val)
	})

	t.Run("DiscoveryUsesLookupEnv", func(t *testing.T) {
		isolate(t)
		explicit := writeTestFile(t, t.TempDir(), "explicit.toml", `test = "lookupvalue"`)

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs(nil).
			WithLookupEnv(mapEnv(map[string]string{"MYAPP_CONFIG": explicit})).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "lookupvalue", val)
		assert.Equal(t, []string{explicit}, cfg.LoadedFiles())

		xdg := t.TempDir()
		writeTestFile(t, filepath.Join(xdg, "myapp"), "myapp.toml", `test = "lookupxdg"`)

		cfg, err = NewBuilder().
			WithArgs(nil).
			WithLookupEnv(mapEnv(map[string]string{"XDG_CONFIG_HOME": xdg})).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ = cfg.AsString("test")
		assert.Equal(t, "lookupxdg", val)
	})

	t.Run("SpecificPathsWin", func(t *testing.T) {
		isolate(t)
		specific := t.TempDir()
		general := t.TempDir()
		writeTestFile(t, specific, "myapp.toml", `test = "specific"`)
		writeTestFile(t, general, "myapp.toml", "test = \"general\"\nonly_general = true\n")

		opts := FileDiscoveryOptions{
			Name:       "myapp",
			Extensions: []string{".toml"},
			Paths:      []string{specific, general},
		}

		found := DiscoverFiles(opts)
		assert.Equal(t, []string{
			filepath.Join(specific, "myapp.toml"),
			filepath.Join(general, "myapp.toml"),
		}, found)

		cfg := New()
		cfg.RegisterDiscovered(opts)
		require.NoError(t, cfg.Init())

		val, _ := cfg.AsString("test")
		assert.Equal(t, "specific", val)
		assert.True(t, cfg.IsTruthy("only_general"))
	})

	t.Run("RegularFileOverridesDiscovered", func(t *testing.T) {
		xdg := isolate(t)
		writeTestFile(t, filepath.Join(xdg, "myapp"), "myapp.toml", "test = \"xdg\"\nkeep = \"xdg\"\n")
		override := writeTestFile(t, t.TempDir(), "override.toml", `test = "override"`)

		cfg, err := NewBuilder().
			WithArgs(nil).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			WithFile(override).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "override", val)
		keep, _ := cfg.AsString("keep")
		assert.Equal(t, "xdg", keep)
	})

	t.Run("NothingFound", func(t *testing.T) {
		isolate(t)
		assert.Empty(t, DiscoverFiles(DefaultDiscoveryOptions("myapp")))

		cfg, err := NewBuilder().
			WithDefaults(defaults).
			WithArgs(nil).
			WithFileDiscovery(DefaultDiscoveryOptions("myapp")).
			Build()
		require.NoError(t, err)

		val, _ := cfg.AsString("test")
		assert.Equal(t, "default", val)
		assert.Empty(t, cfg.LoadedFiles())
	})
}

type staticParser struct {
	ext  string
	data map[string]any
}

func (p staticParser) Handles(name string) bool { return filepath.Ext(name) == p.ext }

func (p staticParser) Read(string, string) (map[string]any, error) { return p.data, nil }
