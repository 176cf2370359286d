// FILE: lixenwraith/zconfig/loader.go
package zconfig

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Init loads all registered sources once. Later calls are no-ops; use Reload
// to rebuild.
func (c *Config) Init() error {
	c.regMu.Lock()
	if c.initialized {
		c.regMu.Unlock()
		return nil
	}
	callbacks, err := c.load()
	c.regMu.Unlock()

	return c.notify(callbacks, err)
}

// Reload rebuilds the store from all registered sources. On failure the
// previous store stays in place.
func (c *Config) Reload() error {
	c.regMu.Lock()
	callbacks, err := c.load()
	c.regMu.Unlock()

	return c.notify(callbacks, err)
}

// IsInitialized reports whether a load has completed.
func (c *Config) IsInitialized() bool {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	return c.initialized
}

// notify runs on-load callbacks outside the registry lock so they may
// register sources or reload.
func (c *Config) notify(callbacks []func(*Config), err error) error {
	if err != nil {
		return err
	}
	for _, fn := range callbacks {
		fn(c)
	}
	return nil
}

// load builds a fresh store and swaps it in. Caller holds regMu.
func (c *Config) load() ([]func(*Config), error) {
	fresh := NewStore()
	fresh.DeepUpdate(Map(c.defaults))

	cycle := &loadCycle{seen: make(map[string]bool)}
	var loadErrors []error

	for _, cat := range loadOrder {
		entries := slices.Clone(c.files[cat])
		slices.SortStableFunc(entries, func(a, b fileEntry) int {
			return cmp.Compare(a.weight, b.weight)
		})

		for _, e := range entries {
			locator := e.locator
			if cat == categoryEnvironment {
				value, ok := c.lookupEnv(locator)
				if !ok || value == "" {
					c.logger.Debug("config file variable not set", zap.String("variable", locator))
					continue
				}
				locator = value
			}
			if err := c.loadFile(fresh, cycle, locator, e); err != nil {
				loadErrors = append(loadErrors, err)
			}
		}
	}

	if len(loadErrors) > 0 {
		return nil, errors.Join(loadErrors...)
	}

	for _, b := range c.envVars {
		if value, ok := c.lookupEnv(b.name); ok {
			if err := fresh.Set(b.key, value); err != nil {
				return nil, fmt.Errorf("environment variable %s: %w", b.name, err)
			}
		}
	}

	for _, s := range c.secrets {
		value, err := c.provideSecret(s.provider, s.locator)
		if err != nil {
			c.logger.Warn("secret not loaded",
				zap.String("provider", s.provider),
				zap.String("path", s.key.String()),
				zap.Error(err))
			continue
		}
		if err := fresh.Set(s.key, value); err != nil {
			return nil, fmt.Errorf("secret for %s: %w", s.key, err)
		}
	}

	c.store.replace(fresh)
	c.loaded = cycle.loaded
	c.initialized = true
	gen := c.generation.Add(1)

	c.logger.Info("configuration loaded",
		zap.Uint64("generation", gen),
		zap.Strings("files", cycle.loaded))

	return slices.Clone(c.onLoad), nil
}

// loadCycle tracks the files merged by one load.
type loadCycle struct {
	seen   map[string]bool
	loaded []string
}

// loadFile parses one locator and merges it into fresh. Missing files and
// files no parser handles are skipped.
func (c *Config) loadFile(fresh *Store, cycle *loadCycle, locator string, e fileEntry) error {
	isURI := strings.Contains(locator, "://")

	path := locator
	if !isURI {
		var err error
		if path, err = canonicalPath(locator); err != nil {
			return fmt.Errorf("failed to resolve config path '%s': %w", locator, err)
		}
	}
	if cycle.seen[path] {
		return nil
	}

	if !isURI {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				c.logger.Debug("config file not found", zap.String("path", path))
				return nil
			}
			return fmt.Errorf("failed to stat config file '%s': %w", path, err)
		}
		if info.IsDir() {
			c.logger.Warn("config path is a directory", zap.String("path", path))
			return nil
		}
	}

	parser := e.parser
	if parser == nil {
		name := path
		if !isURI {
			name = filepath.Base(path)
		}
		parser = c.findParser(name)
	}
	if parser == nil {
		c.logger.Warn("skipping config file", zap.String("path", path), zap.Error(ErrNoParser))
		return nil
	}

	enc := e.encoding
	if enc == "" {
		enc = c.encoding
	}

	data, err := parser.Read(path, enc)
	if err != nil {
		if !errors.Is(err, ErrEmptyDocument) {
			return err
		}
		c.logger.Warn("config file has no values", zap.String("path", path), zap.Error(err))
	}

	fresh.DeepUpdate(Map(data))
	cycle.seen[path] = true
	cycle.loaded = append(cycle.loaded, path)
	c.logger.Debug("config file merged", zap.String("path", path), zap.Int("keys", len(data)))
	return nil
}

func (c *Config) findParser(name string) Parser {
	for _, p := range c.parsers {
		if p.Handles(name) {
			return p
		}
	}
	return nil
}

// canonicalPath expands a leading ~ and makes path absolute.
func canonicalPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
