// FILE: lixenwraith/zconfig/save.go
package zconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// Save atomically writes the current values to path in TOML format.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Dump(&buf); err != nil {
		return fmt.Errorf("failed to marshal config data to TOML: %w", err)
	}
	return atomicWriteFile(path, buf.Bytes())
}

// Dump writes the current values to w in TOML format.
func (c *Config) Dump(w io.Writer) error {
	data := tomlValue(c.store.Snapshot())
	return toml.NewEncoder(w).Encode(data)
}

// tomlValue converts values TOML cannot hold: nils are dropped, json
// numbers become int64 or float64 and decimals become strings.
func tomlValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			if e == nil {
				delete(x, k)
				continue
			}
			x[k] = tomlValue(e)
		}
		return x
	case []any:
		out := x[:0]
		for _, e := range x {
			if e != nil {
				out = append(out, tomlValue(e))
			}
		}
		return out
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case decimal.Decimal:
		return x.String()
	}
	return v
}

// atomicWriteFile writes data to a temporary file in the target directory
// and renames it over path.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary config file in '%s': %w", dir, err)
	}

	tempFilePath := tempFile.Name()
	removed := false
	defer func() {
		if !removed {
			os.Remove(tempFilePath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temp config file '%s': %w", tempFilePath, err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp config file '%s': %w", tempFilePath, err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file '%s': %w", tempFilePath, err)
	}

	if err := os.Chmod(tempFilePath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temporary config file '%s': %w", tempFilePath, err)
	}

	if err := os.Rename(tempFilePath, path); err != nil {
		return fmt.Errorf("failed to rename temp config file to '%s': %w", path, err)
	}
	removed = true
	return nil
}
