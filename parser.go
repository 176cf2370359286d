// FILE: lixenwraith/zconfig/parser.go
package zconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Parser reads one configuration format.
//
// Handles must be a pure check on the file name. Read returns the parsed
// mapping; a document without a mapping yields an empty map and an error
// wrapping ErrEmptyDocument, invalid bytes for the encoding yield ErrDecode.
type Parser interface {
	Handles(name string) bool
	Read(path, encoding string) (map[string]any, error)
}

// DefaultParsers returns the built-in parsers in lookup order.
func DefaultParsers() []Parser {
	return []Parser{
		TOMLParser{},
		YAMLParser{},
		NewCFGParser(),
		NewINIParser(),
		JSONParser{},
	}
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func emptyDocument(path string) (map[string]any, error) {
	return map[string]any{}, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
}

// TOMLParser reads .toml files.
type TOMLParser struct{}

func (TOMLParser) Handles(name string) bool { return hasExt(name, ".toml") }

func (TOMLParser) Read(path, enc string) (map[string]any, error) {
	text, err := readText(path, enc)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if _, err := toml.Decode(text, &out); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
	}
	return out, nil
}

// YAMLParser reads .yaml and .yml files.
type YAMLParser struct{}

func (YAMLParser) Handles(name string) bool { return hasExt(name, ".yaml", ".yml") }

func (YAMLParser) Read(path, enc string) (map[string]any, error) {
	text, err := readText(path, enc)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
	}
	m, ok := asMapping(doc)
	if !ok {
		return emptyDocument(path)
	}
	return copyValue(m).(map[string]any), nil
}

// JSONParser reads .json files. Numbers are kept as json.Number.
type JSONParser struct{}

func (JSONParser) Handles(name string) bool { return hasExt(name, ".json") }

func (JSONParser) Read(path, enc string) (map[string]any, error) {
	text, err := readText(path, enc)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return emptyDocument(path)
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return emptyDocument(path)
	}
	return m, nil
}

// INIParser reads sectioned files. Keys of the default section are
// inherited by every other section and the default section itself is
// not returned. Key names are lower-cased.
type INIParser struct {
	DefaultSection string
	Extensions     []string
}

// NewINIParser handles .ini files with a DEFAULT section.
func NewINIParser() *INIParser {
	return &INIParser{DefaultSection: ini.DefaultSection, Extensions: []string{".ini"}}
}

// NewCFGParser handles .cfg files with a global section.
func NewCFGParser() *INIParser {
	return &INIParser{DefaultSection: "global", Extensions: []string{".cfg"}}
}

func (p *INIParser) Handles(name string) bool { return hasExt(name, p.Extensions...) }

func (p *INIParser) Read(path, enc string) (map[string]any, error) {
	text, err := readText(path, enc)
	if err != nil {
		return nil, err
	}
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("failed to parse INI config file '%s': %w", path, err)
	}

	defaults := make(map[string]any)
	if sec, err := f.GetSection(p.DefaultSection); err == nil {
		for _, key := range sec.Keys() {
			defaults[key.Name()] = key.String()
		}
	}

	out := make(map[string]any)
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == p.DefaultSection {
			continue
		}
		if name == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		values := make(map[string]any, len(defaults)+len(sec.Keys()))
		for k, v := range defaults {
			values[k] = v
		}
		for _, key := range sec.Keys() {
			values[key.Name()] = key.String()
		}
		out[name] = values
	}
	return out, nil
}
