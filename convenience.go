// FILE: lixenwraith/zconfig/convenience.go
package zconfig

import (
	"fmt"
	"strings"
)

// Quick creates and loads a Config with defaults and regular files in a
// single call. Later files override earlier ones.
func Quick(defaults any, files ...string) (*Config, error) {
	b := NewBuilder().WithDefaults(defaults)
	for _, f := range files {
		b.WithFile(f)
	}
	return b.Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(defaults any, files ...string) *Config {
	cfg, err := Quick(defaults, files...)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}

// Require checks that every path holds a non-blank value.
func (c *Config) Require(paths ...any) error {
	var missing []string
	for _, key := range paths {
		v, ok := c.store.Get(key)
		if s, isStr := v.(string); !ok || v == nil || (isStr && c.Resolve(s) == "") {
			missing = append(missing, normalizeKey(key).String())
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required configuration: %s", ErrKeyNotFound, strings.Join(missing, ", "))
	}
	return nil
}

// IsTruthy reports whether key exists and its raw value is truthy.
func (c *Config) IsTruthy(key any) bool {
	v, ok := c.store.Get(key)
	return ok && truthy(v)
}
